package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/restolead/catalog-cli/internal/batch"
	"github.com/restolead/catalog-cli/internal/ingest"
	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/resolver"
)

var servePort int

const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server for feed pushes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		res := initResolver(st, "", false)

		r := chi.NewRouter()
		r.Use(chimiddleware.RequestID)
		r.Use(chimiddleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		delay := time.Duration(cfg.Import.DelayMillis) * time.Millisecond
		r.Post("/webhook/feed", feedWebhookHandler(res, cfg.Server.WebhookSecret, cfg.Import.WindowSize, delay))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			sdCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			srv.Shutdown(sdCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// feedWebhookHandler accepts a pushed feed as a JSON array of loosely-typed
// rows, resolves them in the same concurrent windows the import command
// uses, and answers with the run's counts.
func feedWebhookHandler(res *resolver.Resolver, secret string, windowSize int, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if secret != "" && req.URL.Query().Get("secret") != secret {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}

		var payloads []map[string]any
		if err := json.NewDecoder(req.Body).Decode(&payloads); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if len(payloads) == 0 {
			http.Error(w, `{"error":"empty feed"}`, http.StatusBadRequest)
			return
		}

		items := make([]batch.Item, 0, len(payloads))
		for _, p := range payloads {
			rec := ingest.FromPayload(p, "webhook")
			items = append(items, batch.Item{
				SourceURL: rec.SourceURL,
				Do: func(ctx context.Context) (*model.ItemResult, error) {
					return res.Resolve(ctx, rec, resolver.MergeFeed)
				},
			})
		}

		report, err := batch.New().RunWindowed(req.Context(), items, windowSize, delay)
		if err != nil {
			http.Error(w, `{"error":"run cancelled"}`, http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"rows":    report.Total(),
			"created": report.Created,
			"merged":  report.Merged,
			"skipped": report.Skipped,
			"errored": report.Errored,
		})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
