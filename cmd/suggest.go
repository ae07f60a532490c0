package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tagsmith/internal/textprep"
)

var (
	suggestTitle string
	suggestJSON  bool
)

// suggestCmd runs one stateless tagging call: nothing is written to the
// document store.
var suggestCmd = &cobra.Command{
	Use:   "suggest [input]",
	Short: "Suggest tags for text without storing it",
	Long: `Asks the model for tags over a file, raw text, or stdin ('-') and prints
the suggestions. The document is not registered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		input := args[0]
		body := input
		title := suggestTitle
		contentType := ""

		if input == "-" {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			body = string(raw)
		} else if stat, err := os.Stat(input); err == nil && !stat.IsDir() {
			raw, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}
			body, err = textprep.CleanContent(raw, input)
			if err != nil {
				return fmt.Errorf("clean %s: %w", input, err)
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			}
			switch strings.ToLower(filepath.Ext(input)) {
			case ".html", ".htm":
				contentType = "text/html"
			}
		}

		res, err := appInstance.TaggingService.SuggestForText(cmd.Context(), title, body, contentType)
		if err != nil {
			return err
		}

		if suggestJSON {
			return printJSON(map[string]interface{}{
				"tags":     res.Tags,
				"existing": res.Existing,
				"new":      res.New,
			})
		}
		printTagResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVarP(&suggestTitle, "title", "t", "", "Title shown to the model alongside the text")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "Print the result as JSON")
}
