package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tagsmith/internal/clix"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Maintain the tag catalog",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog tags with document counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		pagination := clix.ParsePagination(cmd.Flags())
		counts, err := appInstance.CatalogService.List(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Println("The tag catalog is empty.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Tag", "Documents"})
		for _, tc := range counts {
			table.Append([]string{tc.Tag.Name, fmt.Sprintf("%d", tc.Count)})
		}
		table.Render()
		return nil
	},
}

var catalogRenameCmd = &cobra.Command{
	Use:   "rename <from> <to>",
	Short: "Rename a catalog tag, merging into the target if it exists",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		if err := appInstance.CatalogService.Rename(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		color.Green("Renamed %s to %s.", args[0], args[1])
		return nil
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Delete a catalog tag and its assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		if err := appInstance.CatalogService.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("Deleted tag %s.", args[0])
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the catalog as YAML (stdout without a file argument)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			defer f.Close()
			out = f
		}
		return appInstance.CatalogService.Export(cmd.Context(), out)
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tags from a YAML catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		n, err := appInstance.CatalogService.Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		color.Green("Imported %d tags.", n)
		return nil
	},
}

var catalogIndexEnqueue bool

var catalogIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the tag embedding index",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		if !appInstance.IndexService.Enabled() {
			return fmt.Errorf("the tag index is disabled; enable it in config (index.enabled) first")
		}

		if catalogIndexEnqueue {
			if err := appInstance.JobClient.EnqueueIndexRebuild(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Queued index rebuild.")
			return nil
		}

		n, err := appInstance.IndexService.Rebuild(cmd.Context())
		if err != nil {
			return err
		}
		color.Green("Indexed %d catalog tags.", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRenameCmd)
	catalogCmd.AddCommand(catalogDeleteCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogIndexCmd)

	catalogListCmd.Flags().IntP("limit", "l", 50, "Number of tags to display")
	catalogListCmd.Flags().IntP("offset", "o", 0, "Number of tags to skip")
	catalogIndexCmd.Flags().BoolVar(&catalogIndexEnqueue, "enqueue", false, "Queue the rebuild instead of running it inline")
}
