package cli

import (
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/spf13/cobra"
)

// NewRootCommand 建立 mealplan 指令
func NewRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "mealplan",
		Short:         "Build meal plan spreadsheets",
		Long:          `Converts a JSON meal plan into an xlsx workbook with one sheet per day.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// CLI 只輸出到終端機，不寫日誌檔
			return common.InitLogger(common.LogOptions{Level: logLevel, Service: "mealplan-cli"})
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newBuildCommand())
	return root
}
