// Package report buckets stored expense records into date windows and
// renders the spending summaries sent back to the chat.
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/belanjabot/belanjabot/pkg/api"
)

// Kind selects the report window.
type Kind int

const (
	// Daily covers the current calendar date only.
	Daily Kind = iota
	// Weekly covers the trailing 7 days, inclusive on both ends.
	Weekly
	// Monthly covers the trailing 30 days, inclusive on both ends.
	Monthly
	// All covers every record the owner has.
	All
	// Custom covers an explicit [Start, End] date range.
	Custom
)

// Window is a date range used to bucket records for a report.
type Window struct {
	Kind Kind
	// Start and End bound a Custom window; other kinds ignore them.
	Start time.Time
	End   time.Time
}

// Resolve turns the window into a concrete inclusive [start, end] range of
// calendar dates relative to now. An All window resolves to zero times.
func (w Window) Resolve(now time.Time) (time.Time, time.Time) {
	today := truncate(now)
	switch w.Kind {
	case Daily:
		return today, today
	case Weekly:
		return today.AddDate(0, 0, -7), today
	case Monthly:
		return today.AddDate(0, 0, -30), today
	case Custom:
		return truncate(w.Start), truncate(w.End)
	default:
		return time.Time{}, time.Time{}
	}
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Summary is the derived, ephemeral result of aggregating one owner's
// records over a window. It is never persisted.
type Summary struct {
	Window  Window
	Start   time.Time
	End     time.Time
	Count   int
	Total   decimal.Decimal
	Records []api.Record
}

// Aggregate filters records to those whose expense date (not creation
// timestamp) falls inside the window and sums their amounts exactly.
// A record whose date no longer parses is skipped and logged; one corrupt
// row must never take down the whole report. An empty result is valid.
func Aggregate(records []api.Record, w Window, now time.Time, logger *slog.Logger) Summary {
	if logger == nil {
		logger = slog.Default()
	}

	start, end := w.Resolve(now)
	s := Summary{
		Window: w,
		Start:  start,
		End:    end,
		Total:  decimal.Zero,
	}

	for _, rec := range records {
		d, err := rec.ParsedDate(now.Location())
		if err != nil {
			logger.Warn("skipping record with malformed date",
				"date", rec.Date,
				"owner_id", rec.OwnerID,
				"error", err,
			)
			continue
		}

		if w.Kind != All && (d.Before(start) || d.After(end)) {
			continue
		}

		s.Records = append(s.Records, rec)
		s.Count++
		s.Total = s.Total.Add(rec.Amount)
	}

	return s
}

// Title renders the report heading, including the resolved date range.
func (s Summary) Title() string {
	switch s.Window.Kind {
	case Daily:
		return fmt.Sprintf("📅 Laporan Harian (%s)", fmtDate(s.Start))
	case Weekly:
		return fmt.Sprintf("🗓 Laporan Mingguan (%s - %s)", fmtDate(s.Start), fmtDate(s.End))
	case Monthly:
		return fmt.Sprintf("📆 Laporan Bulanan (%s - %s)", fmtDate(s.Start), fmtDate(s.End))
	case Custom:
		return fmt.Sprintf("📊 Laporan (%s - %s)", fmtDate(s.Start), fmtDate(s.End))
	default:
		return "📋 Semua Laporan Belanja"
	}
}

// Format renders the full reply text. An empty window renders an explicit
// "no expenses" message, never a blank reply.
func (s Summary) Format() string {
	var b strings.Builder
	b.WriteString(s.Title())
	b.WriteString("\n\n")

	if s.Count == 0 {
		b.WriteString("❌ Tiada belanja direkodkan dalam tempoh ini.")
		return b.String()
	}

	for _, rec := range s.Records {
		fmt.Fprintf(&b, "🧾 %s | %s | RM%s | %s\n",
			rec.Item, rec.Location, rec.Amount.StringFixed(2), rec.Date)
	}

	fmt.Fprintf(&b, "\n🧾 Transaksi: %d\n💰 Jumlah: RM%s", s.Count, s.Total.StringFixed(2))
	return b.String()
}

func fmtDate(t time.Time) string {
	return t.Format("02 January 2006")
}
