package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a stored document",
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

		if err := appInstance.DocumentService.Delete(cmd.Context(), id); err != nil {
			return err
		}
		color.Green("Deleted document %d.", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
