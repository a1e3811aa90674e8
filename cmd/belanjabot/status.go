package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"google.golang.org/api/sheets/v4"
	vision "google.golang.org/api/vision/v1"

	"github.com/belanjabot/belanjabot/pkg/client"
	"github.com/belanjabot/belanjabot/pkg/config"
)

// runStatus checks configuration, credentials and connectivity, printing a
// checklist without starting the server.
func runStatus() error {
	fmt.Println("=== BelanjaBot Status ===")
	fmt.Println()

	allGood := true
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	fmt.Print("Configuration: ")
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		allGood = false
	} else {
		fmt.Printf("✓ Valid (store: %s, timezone: %s)\n", cfg.Store, cfg.Timezone)
	}

	httpClient := checkCredentials(cfg, &allGood)
	checkStore(cfg, httpClient, quiet, &allGood)
	checkBot("Log bot", cfg.Bot1Token, &allGood)
	checkBot("Report bot", cfg.Bot2Token, &allGood)

	fmt.Println()
	if allGood {
		fmt.Println("✓ All checks passed")
	} else {
		fmt.Println("✗ Some checks failed")
	}
	return nil
}

func checkCredentials(cfg config.Config, allGood *bool) *http.Client {
	fmt.Print("Google credentials: ")
	creds, err := cfg.Credentials()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return nil
	}
	if creds == nil {
		fmt.Println("⚠ Not configured (sheets store and OCR unavailable)")
		return nil
	}

	httpClient, err := client.New(creds, sheets.SpreadsheetsScope, vision.CloudVisionScope)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return nil
	}
	fmt.Println("✓ Service account key parsed")
	return httpClient
}

func checkStore(cfg config.Config, httpClient *http.Client, logger *slog.Logger, allGood *bool) {
	fmt.Printf("Store (%s): ", cfg.Store)

	if cfg.Store == config.StoreSheets && httpClient == nil {
		fmt.Println("✗ No usable google credentials")
		*allGood = false
		return
	}

	store, closeStore, err := buildStore(cfg, httpClient, logger)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	owners, err := store.Owners(ctx)
	if err != nil {
		fmt.Printf("✗ Reading records failed: %v\n", err)
		*allGood = false
		return
	}
	fmt.Printf("✓ Reachable (%d chats with records)\n", len(owners))
}

func checkBot(name, token string, allGood *bool) {
	fmt.Printf("%s: ", name)
	if token == "" {
		fmt.Println("✗ Token not configured")
		*allGood = false
		return
	}

	tg, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		*allGood = false
		return
	}
	fmt.Printf("✓ @%s\n", tg.Self.UserName)
}
