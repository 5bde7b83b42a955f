package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisight/plantmap-cli/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export plant records as CSV, XLSX, or GeoJSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "fetch")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.FetchAll(ctx); err != nil {
			zap.L().Warn("fetch failed, exporting cached records", zap.Error(err))
		}
		records := env.Store.Snapshot()

		out := exportOut
		if out == "" {
			out = export.TimestampedName(exportFormat)
		}

		switch exportFormat {
		case "csv":
			err = export.WriteCSV(records, out)
		case "xlsx":
			err = export.WriteXLSX(records, out)
		case "geojson":
			err = export.WriteGeoJSON(records, out)
		default:
			return eris.Errorf("unknown export format %q (want csv, xlsx, or geojson)", exportFormat)
		}
		if err != nil {
			return err
		}

		fmt.Printf("exported %d records to %s\n", len(records), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv, xlsx, or geojson")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default: timestamped file name)")
	rootCmd.AddCommand(exportCmd)
}
