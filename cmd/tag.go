package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	tagEnqueue bool
	tagManual  []string
)

var tagCmd = &cobra.Command{
	Use:   "tag <document-id>",
	Short: "Tag a stored document",
	Long: `Runs tagging for one stored document and persists the assignments.
With --apply, the given tags are assigned directly without a model call.
With --enqueue, the document is handed to the queue worker instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid document ID: %s", args[0])
		}

		if len(tagManual) > 0 {
			applied, err := appInstance.TaggingService.ApplyManualTags(cmd.Context(), id, tagManual)
			if err != nil {
				return err
			}
			color.Green("Applied %d tags to document %d.", len(applied), id)
			return nil
		}

		if tagEnqueue {
			if err := appInstance.JobClient.EnqueueTaggingJob(cmd.Context(), id); err != nil {
				return fmt.Errorf("enqueue tagging job: %w", err)
			}
			fmt.Printf("Queued tagging job for document %d.\n", id)
			return nil
		}

		res, err := appInstance.TaggingService.TagDocument(cmd.Context(), id)
		if err != nil {
			return err
		}
		printTagResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)

	tagCmd.Flags().BoolVar(&tagEnqueue, "enqueue", false, "Queue the tagging job instead of running it inline")
	tagCmd.Flags().StringSliceVar(&tagManual, "apply", nil, "Assign these tags directly, skipping the model")
}
