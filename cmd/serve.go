package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrisight/plantmap-cli/internal/export"
	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "pipeline")
		if err != nil {
			return err
		}
		defer env.Close()

		// Populate the collection before serving; a failed fetch degrades to
		// cached records and is reported through /api/plants.
		if err := env.Store.FetchAll(ctx); err != nil {
			zap.L().Warn("initial fetch failed", zap.Error(err))
		}

		mux := newServeMux(env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newServeMux builds the dashboard API routes.
func newServeMux(env *appEnv) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/plants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  env.Store.Status(),
			"records": env.Store.Snapshot(),
		})
	})

	mux.HandleFunc("GET /api/plants/geojson", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, export.FeatureCollection(env.Store.Snapshot()))
	})

	mux.HandleFunc("GET /api/plants/{imageName}", func(w http.ResponseWriter, r *http.Request) {
		rec, ok := env.Store.Get(r.PathValue("imageName"))
		if !ok {
			http.Error(w, `{"error":"record not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.Pipeline.Tracker().All())
	})

	mux.HandleFunc("POST /api/upload", func(w http.ResponseWriter, r *http.Request) {
		files, err := parseMultipartFiles(r)
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}

		summary, err := env.Pipeline.ProcessBatch(r.Context(), files)
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})

	mux.HandleFunc("GET /api/view", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.View.Snapshot())
	})

	mux.HandleFunc("PUT /api/view", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			View     model.View `json:"view"`
			Selected string     `json:"selected"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.View != "" {
			if err := env.View.SetView(req.View); err != nil {
				http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
				return
			}
		}
		env.View.Select(req.Selected)
		writeJSON(w, http.StatusOK, env.View.Snapshot())
	})

	mux.HandleFunc("PUT /api/theme", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Theme model.Theme `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if err := env.View.SetTheme(r.Context(), req.Theme); err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, env.View.Snapshot())
	})

	return mux
}

// parseMultipartFiles reads uploaded files from a multipart form into
// pipeline candidates.
func parseMultipartFiles(r *http.Request) ([]pipeline.CandidateFile, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, eris.Wrap(err, "parse multipart form")
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		return nil, eris.New("no files in request")
	}

	var files []pipeline.CandidateFile
	for _, hdr := range r.MultipartForm.File["files"] {
		f, err := hdr.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", hdr.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", hdr.Filename)
		}
		files = append(files, pipeline.CandidateFile{
			Name:        hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
