package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/config"
	"github.com/meta-portal/meta-service/internal/crypto"
	"github.com/meta-portal/meta-service/internal/mail"
	"github.com/meta-portal/meta-service/internal/monitoring"
	"github.com/meta-portal/meta-service/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}

	cfg := config.Load()

	var cipher *crypto.Cipher
	if cfg.EncryptionKey != "" {
		var err error
		cipher, err = crypto.New([]byte(cfg.EncryptionKey))
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid encryption key")
		}
	} else {
		log.Warn().Msg("No encryption key set, contact emails will not be persisted")
	}

	var cache store.RedisClient
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	st, err := store.New(cfg.DSN(), cache, cipher)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer st.Close()

	monitoring.InitMetrics()

	transport := mail.NewSMTPTransport(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		UseTLS:   cfg.SMTPUseTLS,
		Timeout:  cfg.SMTPTimeout,
	})
	mailSvc := mail.NewService(st, transport, mail.Config{
		FromEmail:  cfg.FromEmail,
		FromName:   cfg.FromName,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})

	worker := mail.NewWorker(mailSvc, cfg.SweepInterval, cfg.SweepLimit)
	worker.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/admin/email/queue/process", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		processed, err := mailSvc.ProcessQueue(r.Context(), cfg.SweepLimit, "admin")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"processed": processed})
	})
	mux.HandleFunc("/admin/email/stats", func(w http.ResponseWriter, r *http.Request) {
		var companyID *int64
		if v := r.URL.Query().Get("company_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, "invalid company_id", http.StatusBadRequest)
				return
			}
			companyID = &id
		}
		stats, err := mailSvc.Stats(r.Context(), companyID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server for health checks, metrics and admin started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}
	worker.Stop()
	log.Info().Msg("Server exiting")
}
