package postgres

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/belanjabot/belanjabot/pkg/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// TestNew_ConnectionFailure tests that the store returns an error when the
// database is unreachable.
func TestNew_ConnectionFailure(t *testing.T) {
	cfg := Config{
		Host:     "nonexistent-host",
		Port:     5432,
		Database: "belanjabot",
		User:     "belanjabot",
		Password: "password",
		SSLMode:  "disable",
	}

	_, err := New(cfg, testLogger())
	if err == nil {
		t.Error("expected error when connecting to nonexistent host, got nil")
	}
}

func integrationConfig(t *testing.T) Config {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_HOST") == "" {
		t.Skip("TEST_POSTGRES_HOST not set, skipping integration test")
	}
	return Config{
		Host:     os.Getenv("TEST_POSTGRES_HOST"),
		Database: os.Getenv("TEST_POSTGRES_DB"),
		User:     os.Getenv("TEST_POSTGRES_USER"),
		Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
	}
}

// TestAppendAndListFor writes a record and reads it back.
func TestAppendAndListFor(t *testing.T) {
	store, err := New(integrationConfig(t), testLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	owner := time.Now().UnixNano()

	rec := api.Record{
		Expense: api.Expense{
			Item:      "Nasi Ayam",
			Location:  "Kedai Ali",
			Amount:    decimal.RequireFromString("10.50"),
			Date:      "2025-05-20",
			Time:      "14:30:45",
			ItemCount: 1,
		},
		OwnerID:   owner,
		Timestamp: time.Now(),
	}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	records, err := store.ListFor(ctx, owner)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.Item != rec.Item || got.Location != rec.Location ||
		!got.Amount.Equal(rec.Amount) || got.Date != rec.Date {
		t.Errorf("record round trip changed: %+v vs %+v", got, rec)
	}
}

// TestOwners checks that a fresh owner shows up in the distinct listing.
func TestOwners(t *testing.T) {
	store, err := New(integrationConfig(t), testLogger())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	owner := time.Now().UnixNano()

	rec := api.Record{
		Expense: api.Expense{
			Item:      "Teh Tarik",
			Location:  "-",
			Amount:    decimal.RequireFromString("2.00"),
			Date:      "2025-05-20",
			Time:      "09:00:00",
			ItemCount: 1,
		},
		OwnerID:   owner,
		Timestamp: time.Now(),
	}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	owners, err := store.Owners(ctx)
	if err != nil {
		t.Fatalf("owners failed: %v", err)
	}

	found := false
	for _, id := range owners {
		if id == owner {
			found = true
		}
	}
	if !found {
		t.Errorf("owner %d missing from %v", owner, owners)
	}
}
