package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/belanjabot/belanjabot/pkg/api"
)

var fixedNow = time.Date(2025, 5, 20, 14, 30, 45, 0, time.UTC)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantItem     string
		wantLocation string
		wantAmount   string
	}{
		{
			name:         "item before amount",
			text:         "nasi ayam rm10.50",
			wantItem:     "Nasi Ayam",
			wantLocation: "-",
			wantAmount:   "10.50",
		},
		{
			name:         "item after amount",
			text:         "RM5.20 Nasi Lemak Warung Haji",
			wantItem:     "Nasi Lemak Warung Haji",
			wantLocation: "-",
			wantAmount:   "5.20",
		},
		{
			name:         "tie goes to the text before the amount",
			text:         "nasi lemak rm5 kedai ali",
			wantItem:     "Nasi Lemak",
			wantLocation: "Kedai Ali",
			wantAmount:   "5.00",
		},
		{
			name:         "whole ringgit without decimals",
			text:         "teh tarik rm2",
			wantItem:     "Teh Tarik",
			wantLocation: "-",
			wantAmount:   "2.00",
		},
		{
			name:         "marker case and spacing are flexible",
			text:         "sabun dobi Rm 12.5",
			wantItem:     "Sabun Dobi",
			wantLocation: "-",
			wantAmount:   "12.50",
		},
		{
			name:         "first amount wins",
			text:         "ais krim goreng rm3 rm4 kedai",
			wantItem:     "Ais Krim Goreng",
			wantLocation: "Rm4 Kedai",
			wantAmount:   "3.00",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLine(tc.text, fixedNow)
			if err != nil {
				t.Fatalf("ParseLine(%q) returned error: %v", tc.text, err)
			}

			if got.Item != tc.wantItem {
				t.Errorf("item: got %q, want %q", got.Item, tc.wantItem)
			}
			if got.Location != tc.wantLocation {
				t.Errorf("location: got %q, want %q", got.Location, tc.wantLocation)
			}
			if got.Amount.StringFixed(2) != tc.wantAmount {
				t.Errorf("amount: got %s, want %s", got.Amount.StringFixed(2), tc.wantAmount)
			}
			if got.ItemCount != 1 {
				t.Errorf("item count: got %d, want 1", got.ItemCount)
			}
			if got.Date != "2025-05-20" {
				t.Errorf("date: got %q, want %q", got.Date, "2025-05-20")
			}
			if got.Time != "14:30:45" {
				t.Errorf("time: got %q, want %q", got.Time, "14:30:45")
			}
		})
	}
}

func TestParseLine_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "no amount at all", text: "sabun", wantErr: ErrNoAmount},
		{name: "bare number is not an amount", text: "nasi ayam 10.50", wantErr: ErrNoAmount},
		{name: "amount without item", text: "rm10", wantErr: ErrNoItem},
		{name: "empty text", text: "   ", wantErr: ErrNoAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLine(tc.text, fixedNow)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseLine(%q): got error %v, want %v", tc.text, err, tc.wantErr)
			}
		})
	}
}

// Parsing the same text twice must produce identical candidates when the
// clock is held still.
func TestParseLine_Deterministic(t *testing.T) {
	first, err := ParseLine("nasi ayam rm10.50", fixedNow)
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	second, err := ParseLine("nasi ayam rm10.50", fixedNow)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}

	if first.Item != second.Item || first.Location != second.Location ||
		!first.Amount.Equal(second.Amount) || first.Date != second.Date ||
		first.Time != second.Time {
		t.Errorf("parses differ: %+v vs %+v", first, second)
	}
}

func TestParseLine_PlaceholderConstant(t *testing.T) {
	got, err := ParseLine("burger rm8", fixedNow)
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if got.Location != api.LocationPlaceholder {
		t.Errorf("location: got %q, want the placeholder %q", got.Location, api.LocationPlaceholder)
	}
}
