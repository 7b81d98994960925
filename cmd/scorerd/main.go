package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chatter-insights-go/internal/config"
	"chatter-insights-go/internal/judge"
	"chatter-insights-go/internal/logger"
	"chatter-insights-go/internal/notify"
	"chatter-insights-go/internal/ofapi"
	"chatter-insights-go/internal/pipeline"
	"chatter-insights-go/internal/profile"
	"chatter-insights-go/internal/report"
	"chatter-insights-go/internal/scorer"
	"chatter-insights-go/internal/store"
	"chatter-insights-go/internal/story"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "chatter-insights-go").Info("starting service")

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("schema setup failed")
	}

	chats := ofapi.New(cfg.OFAPIBaseURL, cfg.OFAPITimeout)
	judgeClient := judge.NewClient(cfg.JudgeURL, cfg.JudgeAPIKey, cfg.JudgeModel)
	storyClient := story.NewClient(cfg.StoryURL, cfg.StoryAPIKey, cfg.StoryModel)
	profiles := profile.NewUpdater(db)
	notifier := notify.NewTelegram(cfg.TelegramBotToken, db)

	sc := scorer.New(db, chats, judgeClient, storyClient, profiles, notifier, cfg.MaxChats)

	driver, err := pipeline.NewDriver(cfg, db, sc)
	if err != nil {
		log.WithError(err).Fatal("driver setup failed")
	}
	go driver.Run(ctx)

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Info("health check")
		fmt.Fprint(w, "ok")
	})

	// manual trigger for one scoring pass (cron-style, secret-guarded)
	mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "run")
		if !authorized(r, cfg.CronSecret) {
			reqLog.Warn("unauthorized run request")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		reqLog.Info("manual scoring pass requested")

		start := time.Now()
		summary := driver.RunOnce(r.Context())
		reqLog.WithField("duration_ms", time.Since(start).Milliseconds()).Info("scoring pass finished")

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			reqLog.WithError(err).Error("failed to write response")
		}
	})

	// xlsx export of the last 7 days of scores plus all profiles
	mux.HandleFunc("/report.xlsx", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "report")
		if !authorized(r, cfg.CronSecret) {
			reqLog.Warn("unauthorized report request")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		scores, err := db.ScoresSince(r.Context(), time.Now().Add(-7*24*time.Hour))
		if err != nil {
			reqLog.WithError(err).Error("score query failed")
			http.Error(w, "report error", http.StatusInternalServerError)
			return
		}
		profs, err := db.AllProfiles(r.Context())
		if err != nil {
			reqLog.WithError(err).Error("profile query failed")
			http.Error(w, "report error", http.StatusInternalServerError)
			return
		}

		path := filepath.Join(os.TempDir(), fmt.Sprintf("chatter-scores-%d.xlsx", time.Now().UnixNano()))
		defer os.Remove(path)
		if err := report.Export(path, scores, profs); err != nil {
			reqLog.WithError(err).Error("workbook export failed")
			http.Error(w, "report error", http.StatusInternalServerError)
			return
		}

		reqLog.WithField("scores", len(scores)).WithField("profiles", len(profs)).Info("report exported")
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="chatter-scores.xlsx"`)
		http.ServeFile(w, r, path)
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("shutdown complete")
}

// authorized checks the Bearer secret. An unset secret leaves the
// endpoint open (local development).
func authorized(r *http.Request, secret string) bool {
	if secret == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+secret
}
