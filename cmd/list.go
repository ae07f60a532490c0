package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tagsmith/internal/clix"
	"tagsmith/internal/services"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Long:  `Displays stored documents with their tags. Supports pagination and filtering by tags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		pagination := clix.ParsePagination(cmd.Flags())
		filterTags := clix.ParseTags(cmd.Flags())

		items, err := appInstance.DocumentService.List(cmd.Context(), services.ListParams{
			Limit:      pagination.Limit,
			Offset:     pagination.Offset,
			FilterTags: filterTags,
		})
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}

		if listJSON {
			return printJSON(items)
		}

		if len(items) == 0 {
			fmt.Println("No documents found.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Title", "Tags", "Source", "Added"})
		for _, item := range items {
			names := make([]string, len(item.Tags))
			for i, tag := range item.Tags {
				names[i] = tag.Name
			}
			table.Append([]string{
				fmt.Sprintf("%d", item.Document.ID),
				item.Document.Title,
				strings.Join(names, " "),
				item.Document.Source,
				item.Document.CreatedAt.Format("2006-01-02"),
			})
		}
		table.Render()
		fmt.Printf("Displayed %d documents.\n", len(items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntP("limit", "l", 20, "Number of documents to display")
	listCmd.Flags().IntP("offset", "o", 0, "Number of documents to skip")
	listCmd.Flags().String("tags", "", "Only show documents carrying all of these tags (comma-separated)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the result as JSON")
}
