package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tagsmith/internal/clix"
)

var (
	batchEnqueue bool
	batchLimit   int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Tag all untagged documents",
	Long: `Tags every untagged document. By default documents are tagged inline with
bounded parallelism; --enqueue hands them to the queue worker instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		if batchEnqueue {
			queued, err := appInstance.BatchService.EnqueueUntagged(cmd.Context(), batchLimit)
			if err != nil {
				return err
			}
			fmt.Printf("Queued %d tagging jobs.\n", queued)
			return nil
		}

		res, err := appInstance.BatchService.TagUntagged(cmd.Context(), batchLimit)
		if err != nil {
			return err
		}
		if res.Failed > 0 {
			color.Yellow("Tagged %d documents, %d failed.", res.Tagged, res.Failed)
		} else {
			color.Green("Tagged %d documents.", res.Tagged)
		}
		return nil
	},
}

var batchJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List recorded background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		pagination := clix.ParsePagination(cmd.Flags())
		jobs, err := appInstance.BatchService.ListJobs(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs recorded.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Type", "Queue", "Status", "Updated"})
		for _, job := range jobs {
			status := job.Status
			if job.LastError != nil && *job.LastError != "" {
				status = fmt.Sprintf("%s (%s)", job.Status, *job.LastError)
			}
			table.Append([]string{
				job.ID.String(), job.TaskType, job.Queue, status,
				job.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchJobsCmd)

	batchCmd.Flags().BoolVar(&batchEnqueue, "enqueue", false, "Queue tagging jobs instead of tagging inline")
	batchCmd.Flags().IntVar(&batchLimit, "batch-size", 100, "Maximum documents to process in one run")

	batchJobsCmd.Flags().IntP("limit", "l", 20, "Number of jobs to display")
	batchJobsCmd.Flags().IntP("offset", "o", 0, "Number of jobs to skip")
}
