package mealplan

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const examplePlan = `{"calorie_target":2000,"protein_target":150,"days":{"Mon":[{"meal_name":"Breakfast","ingredients":[{"name":"Eggs","quantity":2,"unit":"pcs","protein":12,"calories":140}]}]}}`

func openArtifact(t *testing.T, a *Artifact) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(a.Data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// readRow 讀取 A..F 的原始值並去掉尾端空白
func readRow(t *testing.T, f *excelize.File, sheet string, row int) []string {
	t.Helper()
	values := make([]string, 0, 6)
	for col := 1; col <= 6; col++ {
		cell, err := excelize.CoordinatesToCellName(col, row)
		require.NoError(t, err)
		v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		values = append(values, v)
	}
	for len(values) > 0 && values[len(values)-1] == "" {
		values = values[:len(values)-1]
	}
	return values
}

func TestBuildExamplePlan(t *testing.T) {
	a, err := NewBuilder().BuildJSON([]byte(examplePlan))
	require.NoError(t, err)

	assert.Equal(t, Filename, a.Filename)
	assert.Equal(t, ContentType, a.ContentType)
	assert.Equal(t, []string{"Mon"}, a.Sheets)

	f := openArtifact(t, a)
	assert.Equal(t, []string{"Mon"}, f.GetSheetList())

	expected := [][]string{
		{"Metric", "Target", "Actual", "Difference"},
		{"Calories (kcal)", "2000", "140", "-1860"},
		{"Protein (grams)", "150", "12", "-138"},
		{},
		{"Breakfast"},
		{"Meal", "Ingredient", "Quantity", "Unit", "Protein (g)", "Calories"},
		{"Breakfast", "Eggs", "2", "pcs", "12", "140"},
		{"TOTAL", "", "", "", "12", "140"},
		{},
		{"Daily Totals", "", "", "", "12", "140"},
	}
	for i, want := range expected {
		assert.Equal(t, want, readRow(t, f, "Mon", i+1), "row %d", i+1)
	}
	assert.Empty(t, readRow(t, f, "Mon", len(expected)+1))
}

func TestBuildSheetsFollowInputOrder(t *testing.T) {
	body := `{"calorie_target":1800,"protein_target":120,"days":{
		"Wednesday":[],"Monday":[],"Sunday":[],"Sheet2":[]}}`

	a, err := NewBuilder().BuildJSON([]byte(body))
	require.NoError(t, err)

	f := openArtifact(t, a)
	assert.Equal(t, []string{"Wednesday", "Monday", "Sunday", "Sheet2"}, f.GetSheetList())
	for _, name := range f.GetSheetList() {
		assert.NotEqual(t, "Sheet", name)
		assert.NotEqual(t, "Sheet1", name)
	}
}

func TestBuildDayWithoutMeals(t *testing.T) {
	body := `{"calorie_target":2000,"protein_target":150,"days":{"Rest":[]}}`

	a, err := NewBuilder().BuildJSON([]byte(body))
	require.NoError(t, err)

	f := openArtifact(t, a)
	assert.Equal(t, []string{"Calories (kcal)", "2000", "0", "-2000"}, readRow(t, f, "Rest", 2))
	assert.Empty(t, readRow(t, f, "Rest", 4))
	assert.Equal(t, []string{"Daily Totals", "", "", "", "0", "0"}, readRow(t, f, "Rest", 5))
}

func TestBuildTotalsPerMealAndDay(t *testing.T) {
	req := &Request{
		CalorieTarget: 2200,
		ProteinTarget: 160,
		Days: []Day{
			{Label: "Mon", Meals: []Meal{
				{MealName: "Breakfast", Ingredients: []Ingredient{
					{Name: "Oats", Quantity: 80, Unit: "g", Protein: 10.5, Calories: 300},
					{Name: "Milk", Quantity: 250, Unit: "ml", Protein: 8.25, Calories: 122.5},
				}},
				{MealName: "Lunch", Ingredients: []Ingredient{
					{Name: "Chicken", Quantity: 200, Unit: "g", Protein: 62, Calories: 330},
				}},
			}},
			{Label: "Tue", Meals: []Meal{
				{MealName: "Dinner", Ingredients: []Ingredient{
					{Name: "Salmon", Quantity: 150, Unit: "g", Protein: 30, Calories: 280},
				}},
			}},
		},
	}

	a, err := NewBuilder().Build(req)
	require.NoError(t, err)
	f := openArtifact(t, a)

	// Mon: Breakfast rows 5-10, Lunch rows 11-15, Daily Totals row 16
	assert.Equal(t, []string{"TOTAL", "", "", "", "18.75", "422.5"}, readRow(t, f, "Mon", 9))
	assert.Equal(t, []string{"TOTAL", "", "", "", "62", "330"}, readRow(t, f, "Mon", 14))
	assert.Equal(t, []string{"Daily Totals", "", "", "", "80.75", "752.5"}, readRow(t, f, "Mon", 16))
	assert.Equal(t, []string{"Calories (kcal)", "2200", "752.5", "-1447.5"}, readRow(t, f, "Mon", 2))
	assert.Equal(t, []string{"Protein (grams)", "160", "80.75", "-79.25"}, readRow(t, f, "Mon", 3))

	// 每天的差值只使用當天的合計
	assert.Equal(t, []string{"Calories (kcal)", "2200", "280", "-1920"}, readRow(t, f, "Tue", 2))
	assert.Equal(t, []string{"Protein (grams)", "160", "30", "-130"}, readRow(t, f, "Tue", 3))
	assert.Equal(t, []string{"Daily Totals", "", "", "", "30", "280"}, readRow(t, f, "Tue", 10))
}

func TestBuildKeepsFullPrecision(t *testing.T) {
	body := `{"calorie_target":0,"protein_target":0,"days":{"Mon":[{"meal_name":"Snack","ingredients":[
		{"name":"a","quantity":1,"unit":"g","protein":0.1,"calories":0.1},
		{"name":"b","quantity":1,"unit":"g","protein":0.2,"calories":0.2}]}]}}`

	a, err := NewBuilder().BuildJSON([]byte(body))
	require.NoError(t, err)
	f := openArtifact(t, a)

	x, y := 0.1, 0.2
	want := fmt.Sprint(x + y)
	row := readRow(t, f, "Mon", 9)
	require.Len(t, row, 6)
	assert.Equal(t, want, row[4])
	assert.Equal(t, want, row[5])
}

func TestBuildStylesSummaryBlock(t *testing.T) {
	a, err := NewBuilder().BuildJSON([]byte(examplePlan))
	require.NoError(t, err)
	f := openArtifact(t, a)

	for _, cell := range []string{"A1", "B2", "D3"} {
		id, err := f.GetCellStyle("Mon", cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotNil(t, style.Font, cell)
		assert.True(t, style.Font.Bold, cell)
		assert.Equal(t, "pattern", style.Fill.Type, cell)
		assert.Equal(t, 1, style.Fill.Pattern, cell)
		require.NotEmpty(t, style.Fill.Color, cell)
		assert.True(t, strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), summaryFill), cell)
	}

	for _, cell := range []string{"E1", "F3"} {
		id, err := f.GetCellStyle("Mon", cell)
		require.NoError(t, err)
		style, err := f.GetStyle(id)
		require.NoError(t, err)
		require.NotNil(t, style.Font, cell)
		assert.True(t, style.Font.Bold, cell)
		assert.Empty(t, style.Fill.Color, cell)
	}

	id, err := f.GetCellStyle("Mon", "A5")
	require.NoError(t, err)
	assert.Equal(t, 0, id)
}

func TestBuildRejectsInvalidSheetNames(t *testing.T) {
	tests := []struct {
		name string
		days []Day
	}{
		{name: "empty label", days: []Day{{Label: ""}}},
		{name: "too long", days: []Day{{Label: strings.Repeat("d", 32)}}},
		{name: "forbidden character", days: []Day{{Label: "Mon/Tue"}}},
		{name: "leading apostrophe", days: []Day{{Label: "'Mon"}}},
		{name: "case collision", days: []Day{{Label: "Mon"}, {Label: "MON"}}},
		{name: "normalization collision", days: []Day{{Label: "Caf\u00e9"}, {Label: "Cafe\u0301"}}},
		{name: "duplicate label", days: []Day{{Label: "Mon"}, {Label: "Mon"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().Build(&Request{Days: tt.days})
			var sheetErr *InvalidSheetNameError
			require.True(t, errors.As(err, &sheetErr), "got %v", err)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestBuildDuplicateDayKeysFail(t *testing.T) {
	body := `{"calorie_target":1,"protein_target":1,"days":{"Mon":[],"Mon":[]}}`
	_, err := NewBuilder().BuildJSON([]byte(body))

	var sheetErr *InvalidSheetNameError
	require.True(t, errors.As(err, &sheetErr), "got %v", err)
}

func TestBuildRejectsEscapedDayLabels(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "literal backslash u", key: `Mon\\u0041`},
		{name: "literal backslash n", key: `a\\nb`},
		{name: "newline", key: `a\nb`},
		{name: "tab", key: `Mon\tTue`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"calorie_target":1,"protein_target":1,"days":{"` + tt.key + `":[]}}`
			a, err := NewBuilder().BuildJSON([]byte(body))
			assert.Nil(t, a)

			var sheetErr *InvalidSheetNameError
			require.True(t, errors.As(err, &sheetErr), "got %v", err)
		})
	}
}

func TestBuildKeepsTabsAndNewlinesInCells(t *testing.T) {
	body := `{"calorie_target":1,"protein_target":1,"days":{"Mon":[{"meal_name":"Lunch\nbox","ingredients":[]}]}}`
	a, err := NewBuilder().BuildJSON([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch\nbox"}, readRow(t, openArtifact(t, a), "Mon", 5))
}

func TestBuildAcceptsLongestValidName(t *testing.T) {
	name := strings.Repeat("d", MaxSheetNameLength)
	a, err := NewBuilder().Build(&Request{Days: []Day{{Label: name}}})
	require.NoError(t, err)
	assert.Equal(t, []string{name}, openArtifact(t, a).GetSheetList())
}

func TestBuildRequiresDays(t *testing.T) {
	_, err := NewBuilder().Build(&Request{})
	var malformed *MalformedInputError
	assert.True(t, errors.As(err, &malformed))
}
