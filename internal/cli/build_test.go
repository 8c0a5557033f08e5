package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meal-plan-spreadsheet/internal/core/mealplan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const examplePlan = `{"calorie_target":2000,"protein_target":150,"days":{"Mon":[],"Tue":[]}}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildFromFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "plan.json")
	output := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(input, []byte(examplePlan), 0o644))

	out, err := execute(t, "", "build", "--input", input, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "2 sheets")

	f, err := excelize.OpenFile(output)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Mon", "Tue"}, f.GetSheetList())
}

func TestBuildFromStdin(t *testing.T) {
	output := filepath.Join(t.TempDir(), mealplan.Filename)

	_, err := execute(t, examplePlan, "build", "-i", "-", "-o", output)
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestBuildRejectsInvalidPlan(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.xlsx")

	_, err := execute(t, `{"calorie_target":2000}`, "build", "-o", output)
	require.Error(t, err)
	assert.True(t, mealplan.IsClientError(err))
	assert.NoFileExists(t, output)
}

func TestBuildMissingInputFile(t *testing.T) {
	_, err := execute(t, "", "build", "--input", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
