package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"google.golang.org/api/sheets/v4"
	vision "google.golang.org/api/vision/v1"

	"github.com/belanjabot/belanjabot/pkg/api"
	"github.com/belanjabot/belanjabot/pkg/bot"
	"github.com/belanjabot/belanjabot/pkg/client"
	"github.com/belanjabot/belanjabot/pkg/config"
	"github.com/belanjabot/belanjabot/pkg/ocr"
	"github.com/belanjabot/belanjabot/pkg/report"
	"github.com/belanjabot/belanjabot/pkg/store/memory"
	"github.com/belanjabot/belanjabot/pkg/store/postgres"
	sheetsstore "github.com/belanjabot/belanjabot/pkg/store/sheets"
)

// runServe starts the webhook server for both bots and the report scheduler.
func runServe(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	loc := cfg.Location()

	logger.Info("configuration loaded",
		"store", cfg.Store,
		"port", cfg.Port,
		"timezone", cfg.Timezone,
	)

	// One authenticated Google client covers both Sheets and Vision.
	var httpClient *http.Client
	creds, err := cfg.Credentials()
	if err != nil {
		return err
	}
	if creds != nil {
		httpClient, err = client.New(creds, sheets.SpreadsheetsScope, vision.CloudVisionScope)
		if err != nil {
			return fmt.Errorf("creating google client: %w", err)
		}
	}

	store, closeStore, err := buildStore(cfg, httpClient, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var recognizer api.Recognizer
	if httpClient != nil {
		v, err := ocr.NewVision(httpClient, logger.With("component", "ocr"))
		if err != nil {
			return fmt.Errorf("creating vision recognizer: %w", err)
		}
		recognizer = v
	} else {
		logger.Warn("no google credentials configured, receipt OCR disabled")
	}

	bot1, err := tgbotapi.NewBotAPI(cfg.Bot1Token)
	if err != nil {
		return fmt.Errorf("creating log bot client: %w", err)
	}
	bot2, err := tgbotapi.NewBotAPI(cfg.Bot2Token)
	if err != nil {
		return fmt.Errorf("creating report bot client: %w", err)
	}
	logger.Info("bots authorized", "bot1", bot1.Self.UserName, "bot2", bot2.Self.UserName)

	logBot := bot.NewLogBot(bot1, store, recognizer, loc, logger.With("component", "logbot"))
	reportBot := bot.NewReportBot(bot2, store, loc, logger.With("component", "reportbot"))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook/bot1", webhookHandler(logger, logBot.HandleUpdate))
	mux.HandleFunc("POST /webhook/bot2", webhookHandler(logger, reportBot.HandleUpdate))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("GET /api/cron/daily", cronHandler(logger, reportBot, report.Daily))
	mux.HandleFunc("GET /api/cron/weekly", cronHandler(logger, reportBot, report.Weekly))
	mux.HandleFunc("GET /api/cron/monthly", cronHandler(logger, reportBot, report.Monthly))

	// Scheduled report pushes at 20:00 local time: daily every day, weekly
	// on Sundays, monthly on the 1st.
	scheduler := cron.New(cron.WithLocation(loc))
	addSchedule := func(spec string, kind report.Kind, name string) error {
		_, err := scheduler.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := reportBot.Broadcast(ctx, kind); err != nil {
				logger.Error("scheduled broadcast failed", "report", name, "error", err)
			}
		})
		return err
	}
	if err := addSchedule("0 20 * * *", report.Daily, "daily"); err != nil {
		return fmt.Errorf("scheduling daily report: %w", err)
	}
	if err := addSchedule("0 20 * * 0", report.Weekly, "weekly"); err != nil {
		return fmt.Errorf("scheduling weekly report: %w", err)
	}
	if err := addSchedule("0 20 1 * *", report.Monthly, "monthly"); err != nil {
		return fmt.Errorf("scheduling monthly report: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("webhook server listening", "addr", server.Addr)
		errChan <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("belanjabot stopped")
	return nil
}

// buildStore creates the record store selected by STORE. The returned close
// function is a no-op for backends without connections to release.
func buildStore(cfg config.Config, httpClient *http.Client, logger *slog.Logger) (api.Store, func(), error) {
	switch cfg.Store {
	case config.StoreSheets:
		s, err := sheetsstore.New(httpClient, sheetsstore.Config{
			SpreadsheetID: cfg.SpreadsheetID,
			SheetName:     cfg.SheetName,
		}, logger.With("component", "sheets_store"))
		if err != nil {
			return nil, nil, fmt.Errorf("creating sheets store: %w", err)
		}
		return s, func() {}, nil

	case config.StorePostgres:
		s, err := postgres.New(postgres.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger.With("component", "postgres_store"))
		if err != nil {
			return nil, nil, fmt.Errorf("creating postgres store: %w", err)
		}
		return s, s.Close, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store, records are lost on restart")
		return memory.New(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// webhookHandler decodes one Telegram update and hands it to the bot. The
// response is always 200; Telegram retries non-2xx deliveries and a poison
// update must not be redelivered forever.
func webhookHandler(logger *slog.Logger, handle func(context.Context, tgbotapi.Update)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			logger.Warn("discarding malformed update", "error", err)
			w.WriteHeader(http.StatusOK)
			return
		}

		handle(r.Context(), upd)
		w.WriteHeader(http.StatusOK)
	}
}

// cronHandler triggers a scheduled broadcast over HTTP, for platforms that
// drive schedules with external cron pings instead of a resident process.
func cronHandler(logger *slog.Logger, reportBot *bot.ReportBot, kind report.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reportBot.Broadcast(r.Context(), kind); err != nil {
			logger.Error("cron broadcast failed", "error", err)
			http.Error(w, "broadcast failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	}
}
