// cmd/mat-bot/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mat-bot/internal/audit"
	"mat-bot/internal/bot"
	"mat-bot/internal/catalog"
	"mat-bot/internal/common/config"
	"mat-bot/internal/common/database"
	apperrors "mat-bot/internal/common/errors"
	"mat-bot/internal/common/logger"
	"mat-bot/internal/common/observability"
	"mat-bot/internal/kpi"
	"mat-bot/internal/notify"
	"mat-bot/internal/report"
	"mat-bot/internal/scheduler"
	"mat-bot/internal/session"
	"mat-bot/internal/telegram"
	"mat-bot/internal/version"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting MAT bot...", zap.String("version", version.Text()))

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	if cfg.Logging.Level != "" {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (audit trail only) ---
	var esClient *database.ElasticsearchClient
	if cfg.Audit.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			// Test the connection
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}
	auditRec := audit.NewRecorder(esClient, cfg.Audit, log)

	// --- Stores & schema ---
	kpiStore := kpi.NewStore(pg.DB, log)
	if err := kpiStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("work order schema failed", zap.Error(err))
	}
	sessionStore := session.NewStore(pg.DB, log)
	if err := sessionStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("session schema failed", zap.Error(err))
	}
	catalogLoader := catalog.NewLoader(pg.DB, rdb, config.GetDuration(cfg.Database.Redis.CatalogTTL), log)

	// --- Telegram client & ops notifier ---
	tgClient := telegram.NewClient(cfg.Telegram, log)

	notifier, err := notify.New(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}
	var alerter scheduler.Alerter
	if notifier.Enabled() {
		alerter = notifier
		zapLog.Info("Ops notification channels enabled")
	}

	// --- Daily report scheduler ---
	reportFn := func(ctx context.Context, chatID int64) error {
		text, err := report.BuildDaily(ctx, kpiStore, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := tgClient.SendMessage(ctx, chatID, text); err != nil {
			return err
		}
		if notifier.Enabled() {
			// Ops copies are best effort and never fail the send.
			notifier.SendDailyCopy(ctx, fmt.Sprintf("MAT Bot: reporte diario (chat %d)", chatID), text)
		}
		return nil
	}
	sched := scheduler.New(reportFn, alerter, log)

	subscriptions, err := sessionStore.AllWithReportTime(ctx)
	if err != nil {
		zapLog.Fatal("loading subscriptions failed", zap.Error(err))
	}
	restored := sched.Restore(subscriptions)
	zapLog.Info("Daily report schedules restored", zap.Int("count", restored))

	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	go sched.Run(schedCtx)

	// --- Webhook handler ---
	handler := bot.New(bot.Options{
		Logger:            log,
		KPI:               kpiStore,
		Sessions:          sessionStore,
		Catalog:           catalogLoader,
		Telegram:          tgClient,
		Scheduler:         sched,
		Audit:             auditRec,
		Deduper:           rdb,
		Errors:            apperrors.NewErrorHandler(log),
		Obs:               obs,
		WebhookSecret:     cfg.Telegram.WebhookSecret,
		DefaultReportTime: cfg.Reports.DefaultTime,
		DedupTTL:          config.GetDuration(cfg.Database.Redis.DedupTTL),
	})

	// --- HTTP server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/telegram/webhook", handler.HandleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":      true,
			"version": version.Get(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pg.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "detail": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(version.Get())
	})
	mux.Handle("/metrics", promhttp.Handler())
	// pprof registers itself on the default mux.
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      withRecovery(withRequestLog(mux, zapLog), zapLog),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("Webhook server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("Webhook server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	schedCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down server", zap.Error(err))
	}

	zapLog.Info("MAT bot stopped gracefully")
}

// statusRecorder captures the status a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int64("durationMs", time.Since(start).Milliseconds()),
		)
	})
}

func withRecovery(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("handler panicked",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
