// Package sheets implements the expense Store on a Google Spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/belanjabot/belanjabot/pkg/api"
)

// Retry policy for appends hitting the Sheets API rate limit.
const (
	retryAttempts = 3
	retryDelay    = 5 * time.Second
)

var headerRow = []any{"Tarikh", "Masa", "Lokasi", "Barang", "Bilangan", "Jumlah (RM)", "Chat ID"}

// Config holds configuration for the Sheets store.
type Config struct {
	// SpreadsheetID is the ID of the spreadsheet holding the records.
	SpreadsheetID string
	// SheetName is the name of the sheet/tab within the spreadsheet.
	SheetName string
}

// Store reads and appends expense rows in a single worksheet shared by all
// owners; rows are filtered by the owner id column on read.
type Store struct {
	client        *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *slog.Logger
}

// New creates a Sheets store and makes sure the header row is in place.
func New(httpClient *http.Client, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("sheet name is required")
	}

	client, err := sheets.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	s := &Store{
		client:        client,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        logger,
	}

	if err := s.ensureHeaders(context.Background()); err != nil {
		return nil, fmt.Errorf("initializing spreadsheet: %w", err)
	}

	logger.Info("sheets store initialized",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet_name", cfg.SheetName,
	)

	return s, nil
}

func (s *Store) ensureHeaders(ctx context.Context) error {
	headerRange := fmt.Sprintf("%s!A1:G1", s.sheetName)

	resp, err := s.client.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("reading header row: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	req := sheets.ValueRange{Values: [][]any{headerRow}}
	_, err = s.client.Spreadsheets.Values.Update(s.spreadsheetID, headerRange, &req).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	s.logger.Info("wrote header row to spreadsheet")
	return nil
}

// Append writes one record as a new row, retrying on rate limits.
func (s *Store) Append(ctx context.Context, rec api.Record) error {
	row := rec.Row()
	values := make([]any, len(row))
	for i, col := range row {
		values[i] = col
	}

	writeRange := fmt.Sprintf("%s!A2:G2", s.sheetName)
	req := sheets.ValueRange{Values: [][]any{values}}

	err := retry.Do(
		func() error {
			_, err := s.client.Spreadsheets.Values.Append(s.spreadsheetID, writeRange, &req).
				ValueInputOption("USER_ENTERED").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				s.logger.Warn("rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("appending row to sheet: %w", err)
	}

	s.logger.Info("wrote expense row",
		"owner_id", rec.OwnerID,
		"item", rec.Item,
		"amount", rec.Amount.StringFixed(2),
	)

	return nil
}

// ListFor returns every record belonging to the owner. Rows that no longer
// parse are skipped and logged, never failing the whole read.
func (s *Store) ListFor(ctx context.Context, ownerID int64) ([]api.Record, error) {
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []api.Record
	for _, rec := range records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Owners returns the distinct owner ids present in the sheet.
func (s *Store) Owners(ctx context.Context) ([]int64, error) {
	records, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	var owners []int64
	for _, rec := range records {
		if _, ok := seen[rec.OwnerID]; !ok {
			seen[rec.OwnerID] = struct{}{}
			owners = append(owners, rec.OwnerID)
		}
	}
	return owners, nil
}

func (s *Store) readAll(ctx context.Context) ([]api.Record, error) {
	readRange := fmt.Sprintf("%s!A2:G", s.sheetName)
	resp, err := s.client.Spreadsheets.Values.Get(s.spreadsheetID, readRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading rows from sheet: %w", err)
	}

	records := make([]api.Record, 0, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = fmt.Sprint(cell)
		}

		rec, err := api.RecordFromRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed row", "row", i+2, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
