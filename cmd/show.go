package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show one stored document with its tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid document ID: %s", args[0])
		}

		doc, tags, err := appInstance.DocumentService.GetWithTags(cmd.Context(), id)
		if err != nil {
			return err
		}

		if showJSON {
			return printJSON(map[string]interface{}{"document": doc, "tags": tags})
		}

		fmt.Printf("ID:      %d\n", doc.ID)
		fmt.Printf("Title:   %s\n", doc.Title)
		fmt.Printf("Source:  %s\n", doc.Source)
		fmt.Printf("Added:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
		if doc.TaggedAt != nil {
			fmt.Printf("Tagged:  %s\n", doc.TaggedAt.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Tagged:  never")
		}
		if len(tags) > 0 {
			names := make([]string, len(tags))
			for i, tag := range tags {
				names[i] = tag.Name
			}
			fmt.Printf("Tags:    %s\n", color.CyanString(strings.Join(names, " ")))
		}
		fmt.Println("---")
		fmt.Println(doc.Body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the result as JSON")
}
