package parser

import (
	"testing"
)

func TestParseReceipt(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantDate     string
		wantAmount   string
		wantLocation string
		wantItem     string
		wantCount    int
	}{
		{
			name:         "dated receipt with total marker",
			raw:          "12/05/2025\nKedai Ali\nTotal RM23.50",
			wantDate:     "2025-05-12",
			wantAmount:   "23.50",
			wantLocation: "Kedai Ali",
			wantItem:     "Kedai Ali",
			wantCount:    1,
		},
		{
			name:         "iso date",
			raw:          "2025-05-12\nKedai Ali\nTOTAL: 9.90",
			wantDate:     "2025-05-12",
			wantAmount:   "9.90",
			wantLocation: "Kedai Ali",
			wantItem:     "Kedai Ali",
			wantCount:    1,
		},
		{
			name:         "line items kept, total and shop lines excluded",
			raw:          "Restoran Sedap\n12/05/2025\nayam goreng 7.50\nteh o ais 2.20\nTotal 9.70",
			wantDate:     "2025-05-12",
			wantAmount:   "9.70",
			wantLocation: "Restoran Sedap",
			wantItem:     "Ayam Goreng 7.50; Teh O Ais 2.20",
			wantCount:    2,
		},
		{
			name:         "no total marker falls back to the largest price",
			raw:          "Resit\nayam goreng 7.50\nteh o ais 2.20",
			wantDate:     "2025-05-20",
			wantAmount:   "7.50",
			wantLocation: "Resit",
			wantItem:     "Ayam Goreng 7.50; Teh O Ais 2.20",
			wantCount:    2,
		},
		{
			name:         "impossible date falls back to today",
			raw:          "31/02/2025\nKedai Ali\nTotal 5.00",
			wantDate:     "2025-05-20",
			wantAmount:   "5.00",
			wantLocation: "Kedai Ali",
			wantItem:     "Kedai Ali",
			wantCount:    1,
		},
		{
			name:         "no recognizable amount",
			raw:          "kedai makan\nterima kasih",
			wantDate:     "2025-05-20",
			wantAmount:   "0.00",
			wantLocation: "kedai makan",
			wantItem:     "kedai makan",
			wantCount:    1,
		},
		{
			name:         "shop casing is preserved",
			raw:          "12/05/2025\nMyKedai\nTotal RM23.50",
			wantDate:     "2025-05-12",
			wantAmount:   "23.50",
			wantLocation: "MyKedai",
			wantItem:     "MyKedai",
			wantCount:    1,
		},
		{
			name:         "empty input",
			raw:          "\n\n  \n",
			wantDate:     "2025-05-20",
			wantAmount:   "0.00",
			wantLocation: "-",
			wantItem:     "Resit",
			wantCount:    1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseReceipt(tc.raw, fixedNow)

			if got.Date != tc.wantDate {
				t.Errorf("date: got %q, want %q", got.Date, tc.wantDate)
			}
			if got.Amount.StringFixed(2) != tc.wantAmount {
				t.Errorf("amount: got %s, want %s", got.Amount.StringFixed(2), tc.wantAmount)
			}
			if got.Location != tc.wantLocation {
				t.Errorf("location: got %q, want %q", got.Location, tc.wantLocation)
			}
			if got.Item != tc.wantItem {
				t.Errorf("item: got %q, want %q", got.Item, tc.wantItem)
			}
			if got.ItemCount != tc.wantCount {
				t.Errorf("item count: got %d, want %d", got.ItemCount, tc.wantCount)
			}
		})
	}
}

// The grand total near the end of the receipt wins over a subtotal line
// further up.
func TestParseReceipt_BottomMostTotalWins(t *testing.T) {
	raw := "Kedai Ali\nSubtotal 9.00\nTotal 9.50"
	got := ParseReceipt(raw, fixedNow)
	if got.Amount.StringFixed(2) != "9.50" {
		t.Errorf("amount: got %s, want 9.50", got.Amount.StringFixed(2))
	}
}
