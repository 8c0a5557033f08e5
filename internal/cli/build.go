package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"meal-plan-spreadsheet/internal/core/delivery"
	"meal-plan-spreadsheet/internal/core/mealplan"
	"meal-plan-spreadsheet/internal/infrastructure/config"
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// buildOptions build 指令參數
type buildOptions struct {
	input  string
	output string
	upload bool
}

func newBuildCommand() *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a workbook from a JSON meal plan",
		Long: `Reads a meal plan from --input (use "-" for stdin) and writes the workbook to --output.

With --upload the workbook is sent to blob storage instead and the download URL is printed.
Uploading needs BLOB_READ_WRITE_TOKEN in the environment or .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", `Meal plan JSON file ("-" for stdin)`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", mealplan.Filename, "Workbook output path")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload to blob storage and print the download URL")

	return cmd
}

func runBuild(ctx context.Context, stdin io.Reader, stdout io.Writer, opts *buildOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := readInput(stdin, opts.input)
	if err != nil {
		return err
	}

	artifact, err := mealplan.NewBuilder().BuildJSON(body)
	if err != nil {
		return err
	}

	if opts.upload {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		resp, err := delivery.NewBlobDeliverer(cfg.Blob).Deliver(ctx, artifact)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(resp.Body))
		return nil
	}

	if err := os.WriteFile(opts.output, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	common.LogInfo("Workbook written",
		zap.String("path", opts.output),
		zap.Strings("sheets", artifact.Sheets),
	)
	fmt.Fprintf(stdout, "wrote %s (%d sheets, %d bytes)\n", opts.output, len(artifact.Sheets), artifact.Size())
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
