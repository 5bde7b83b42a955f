package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisight/plantmap-cli/internal/store"
)

var plantsRefresh bool

var plantsCmd = &cobra.Command{
	Use:   "plants",
	Short: "List saved plant records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "fetch")
		if err != nil {
			return err
		}
		defer env.Close()

		if plantsRefresh {
			if err := env.Store.FetchAll(ctx); err != nil {
				// Degraded, not fatal: the store fell back to cache if it could.
				zap.L().Warn("fetch failed", zap.Error(err))
			}
		}

		status := env.Store.Status()
		records := env.Store.Snapshot()

		if len(records) == 0 {
			if status.LastError != "" {
				fmt.Printf("no records available (%s)\n", status.LastError)
			} else {
				fmt.Println("no records saved yet")
			}
			return nil
		}

		if status.State == store.StateLoadedFromCache {
			fmt.Println("(showing cached records)")
			if status.LastError != "" {
				fmt.Printf("(last fetch error: %s)\n", status.LastError)
			}
		}

		fmt.Printf("%-30s %12s %12s %-12s %s\n", "IMAGE", "LATITUDE", "LONGITUDE", "DATE", "URL")
		for _, r := range records {
			date := ""
			if t := r.CaptureTime(); !t.IsZero() {
				date = t.Format("2006-01-02")
			}
			fmt.Printf("%-30s %12.6f %12.6f %-12s %s\n", r.ImageName, r.Latitude, r.Longitude, date, r.ImageURL)
		}
		return nil
	},
}

func init() {
	plantsCmd.Flags().BoolVar(&plantsRefresh, "refresh", true, "fetch the latest records from the remote store")
	rootCmd.AddCommand(plantsCmd)
}
