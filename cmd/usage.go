package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tagsmith/internal/clix"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show model usage and spend",
	Long:  `Summarizes recorded model calls: total cost, token counts, and the most recent calls.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		totalCost, inputTokens, outputTokens, err := appInstance.UsageService.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Total spend: $%.4f (%d input tokens, %d output tokens)\n\n",
			totalCost, inputTokens, outputTokens)

		pagination := clix.ParsePagination(cmd.Flags())
		records, err := appInstance.UsageService.ListUsage(ctx, pagination.Limit, pagination.Offset)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No calls recorded yet.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Time", "Provider", "Model", "Operation", "In", "Out", "Cost"})
		for _, rec := range records {
			table.Append([]string{
				rec.CreatedAt.Format("2006-01-02 15:04"),
				rec.Provider,
				rec.Model,
				rec.Operation,
				fmt.Sprintf("%d", rec.InputTokens),
				fmt.Sprintf("%d", rec.OutputTokens),
				fmt.Sprintf("$%.4f", rec.CostUSD),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().IntP("limit", "l", 20, "Number of calls to display")
	usageCmd.Flags().IntP("offset", "o", 0, "Number of calls to skip")
}
