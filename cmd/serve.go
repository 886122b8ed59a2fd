package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/parkrec/campdata/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var dataPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a camp dataset over HTTP",
		Long: `Serves the enriched dataset to the camp finder front end.

Routes:
  GET /camps.json           the dataset file as written by ingest or enrich
  GET /api/sheets           one summary per sheet
  GET /api/sheets/{name}    a sheet's records, filtered by ?category=, ?community=, ?location=
  GET /healthcheck          liveness

The dataset is reloaded whenever the file changes on disk.`,
		Example: `  # Serve camps.json on the default port 8888
  campdata serve

  # Serve another file on a custom port
  campdata serve --data enriched.json --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := handlers.New(dataPath)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/sheets", handler.HandleSheets)
			mux.HandleFunc("/api/sheets/", handler.HandleSheetDetail)
			mux.HandleFunc("/camps.json", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			withCORS := cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
				MaxAge:         300,
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           withCORS(mux),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Camp data available", "addr", addr, "url", "http://localhost"+addr+"/camps.json", "data", dataPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&dataPath, "data", "camps.json", "Dataset file to serve")

	return cmd
}
