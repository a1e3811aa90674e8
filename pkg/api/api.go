// Package api defines the core data structures and collaborator interfaces for belanjabot.
package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// LocationPlaceholder is stored when the user never named a place.
const LocationPlaceholder = "-"

// Canonical formats for the date and time columns of a stored row.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Expense holds a parsed-but-not-yet-persisted expense candidate, derived
// from either a typed message or recognized receipt text.
type Expense struct {
	// Item describes what was purchased, title-cased for display.
	Item string
	// Location is where it was bought, or LocationPlaceholder.
	Location string
	// Amount is the monetary value in RM.
	Amount decimal.Decimal
	// Date and Time are the expense's own date and wall-clock time,
	// defaulted to "now" when the input carries neither.
	Date string
	Time string
	// ItemCount is the number of line items behind this expense.
	// Typed entries are always 1; receipts may carry more.
	ItemCount int
}

// Record is a persisted expense row. Records are append-only: once written
// they are never updated or deleted.
type Record struct {
	Expense
	// OwnerID is the chat identifier the record belongs to.
	OwnerID int64
	// Timestamp is the record-creation instant, distinct from the
	// expense's own Date/Time.
	Timestamp time.Time
}

// Store is the append-only row store backing both bots.
// ListFor returns every record for one owner; implementations skip rows
// that no longer parse rather than failing the whole read.
type Store interface {
	Append(ctx context.Context, rec Record) error
	ListFor(ctx context.Context, ownerID int64) ([]Record, error)
	Owners(ctx context.Context) ([]int64, error)
}

// Recognizer extracts best-effort text from a receipt photo.
// An empty string means nothing was recognized.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Row returns the canonical stored-row layout:
// date, time, location, item, item_count, amount, owner_id.
// The order is fixed; existing spreadsheets depend on it.
func (r Record) Row() []string {
	return []string{
		r.Date,
		r.Time,
		r.Location,
		r.Item,
		strconv.Itoa(r.ItemCount),
		r.Amount.StringFixed(2),
		strconv.FormatInt(r.OwnerID, 10),
	}
}

// RecordFromRow parses a stored row back into a Record. A row that fails to
// parse is malformed; callers skip it rather than aborting the read.
func RecordFromRow(row []string) (Record, error) {
	if len(row) < 7 {
		return Record{}, fmt.Errorf("row has %d columns, want 7", len(row))
	}

	if _, err := time.Parse(DateLayout, row[0]); err != nil {
		return Record{}, fmt.Errorf("parsing date %q: %w", row[0], err)
	}

	amount, err := decimal.NewFromString(row[5])
	if err != nil {
		return Record{}, fmt.Errorf("parsing amount %q: %w", row[5], err)
	}
	if amount.IsNegative() {
		return Record{}, fmt.Errorf("negative amount %q", row[5])
	}

	owner, err := strconv.ParseInt(row[6], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("parsing owner id %q: %w", row[6], err)
	}

	count, err := strconv.Atoi(row[4])
	if err != nil || count < 1 {
		count = 1
	}

	return Record{
		Expense: Expense{
			Item:      row[3],
			Location:  row[2],
			Amount:    amount,
			Date:      row[0],
			Time:      row[1],
			ItemCount: count,
		},
		OwnerID: owner,
	}, nil
}

// ParsedDate returns the expense date as a time.Time in the given location.
func (r Record) ParsedDate(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, r.Date, loc)
}
