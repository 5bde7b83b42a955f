package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/internal/pipeline"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <files...>",
	Short: "Upload crop images and save their extracted locations",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "pipeline")
		if err != nil {
			return err
		}
		defer env.Close()

		files := make([]pipeline.CandidateFile, 0, len(args))
		for _, path := range args {
			f, err := pipeline.LoadCandidate(path)
			if err != nil {
				return err
			}
			files = append(files, f)
		}

		summary, err := env.Pipeline.ProcessBatch(ctx, files)
		if err != nil {
			return err
		}

		printSummary(summary)
		if summary.Saved == 0 && len(summary.Outcomes) > 0 {
			return fmt.Errorf("no files were saved")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func printSummary(s *model.BatchSummary) {
	fmt.Printf("Batch %s\n", s.BatchID)
	for _, o := range s.Outcomes {
		switch {
		case o.Status == model.StatusSuccess && o.Record != nil:
			fmt.Printf("  ✓ %-30s (%.6f, %.6f)\n", o.FileName, o.Record.Latitude, o.Record.Longitude)
		default:
			fmt.Printf("  ✗ %-30s %s: %s\n", o.FileName, o.Stage, o.Error)
		}
	}
	fmt.Printf("saved %d, failed %d, rejected %d\n", s.Saved, s.Failed, s.Rejected)
}
