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
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/posm-recon/internal/audit"
	"github.com/sells-group/posm-recon/internal/model"
	"github.com/sells-group/posm-recon/internal/recon"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve completion and audit reports over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		engine := recon.NewEngine(cfg.Recon)
		router := newRouter(engine)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownServer(srv)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

const shutdownTimeout = 10 * time.Second

// shutdownServer drains in-flight requests. The signal context is already
// canceled by the time shutdown starts, so the drain deadline runs on a
// fresh context.
func shutdownServer(srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// newRouter builds the HTTP API. Reports are computed per request from the
// current store snapshot; the engine itself is stateless.
func newRouter(engine *recon.Engine) chi.Router {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(logMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
	}))
	r.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.RateBurst)))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/v1/completion", func(w http.ResponseWriter, r *http.Request) {
		result, _, err := runCompletion(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/api/v1/audit", func(w http.ResponseWriter, r *http.Request) {
		result, _, err := runCompletion(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		report := audit.NewReporter(cfg.Audit).Report(result)
		writeJSON(w, http.StatusOK, report)
	})

	r.Post("/api/v1/resolve", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LeaderLabel      string `json:"leader_label"`
			ShopNameLabel    string `json:"shop_name_label"`
			CandidateStoreID string `json:"candidate_store_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.LeaderLabel == "" && req.ShopNameLabel == "" {
			http.Error(w, `{"error":"leader_label or shop_name_label is required"}`, http.StatusBadRequest)
			return
		}

		in, err := loadInputs(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		sub := model.SurveySubmission{LeaderLabel: req.LeaderLabel, ShopNameLabel: req.ShopNameLabel}
		resolution := engine.ResolveStoreIdentity(sub, req.CandidateStoreID, in.Stores)
		writeJSON(w, http.StatusOK, resolution)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
