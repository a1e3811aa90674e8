package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/belanjabot/belanjabot/pkg/api"
)

var (
	dmyRe   = regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})`)
	isoRe   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	totalRe = regexp.MustCompile(`(?i)total\D*(\d+(?:\.\d{1,2})?)`)
	priceRe = regexp.MustCompile(`\d+\.\d{1,2}`)
	alphaRe = regexp.MustCompile(`[A-Za-z]`)
	digitRe = regexp.MustCompile(`\d`)
)

// ParseReceipt turns raw OCR output into an expense candidate. OCR noise is
// expected, so it never fails: unresolved fields come back as placeholders
// and a zero amount, which the caller must treat as not persistable.
//
// Heuristics, in line order:
//   - date: first DD/MM/YYYY or YYYY-MM-DD match top-down, normalized to
//     YYYY-MM-DD; defaults to today.
//   - amount: scanning bottom-up, the first line with a "total" marker
//     followed by a number wins (the grand total sits near the end of a
//     receipt). With no such line, the numerically largest decimal-pointed
//     token anywhere wins instead.
//   - shop: the first line with letters and no digits.
//   - items: only price-bearing lines are kept, excluding the date, total
//     and shop lines; they are joined with "; ".
func ParseReceipt(raw string, now time.Time) api.Expense {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	date, dateLine := detectDate(lines)
	if date == "" {
		date = now.Format(api.DateLayout)
	}

	amount, totalLine := detectTotal(lines, dateLine)

	shop, shopLine := detectShop(lines, dateLine)

	var items []string
	for i, l := range lines {
		if i == dateLine || i == totalLine || i == shopLine {
			continue
		}
		if totalRe.MatchString(l) {
			continue
		}
		if priceRe.MatchString(l) {
			items = append(items, l)
		}
	}

	// The shop line keeps its detected casing; receipts get names like
	// "MyKedai" that title casing would mangle.
	item := titleCase(strings.Join(items, "; "))
	if item == "" {
		item = shop
	}
	if item == "" {
		item = "Resit"
	}

	location := shop
	if location == "" {
		location = api.LocationPlaceholder
	}

	count := len(items)
	if count < 1 {
		count = 1
	}

	return api.Expense{
		Item:      item,
		Location:  location,
		Amount:    amount,
		Date:      date,
		Time:      now.Format(api.TimeLayout),
		ItemCount: count,
	}
}

// detectDate returns the canonical date of the first date-looking substring
// and the index of the line carrying it, or ("", -1).
func detectDate(lines []string) (string, int) {
	for i, l := range lines {
		dmy := dmyRe.FindStringSubmatchIndex(l)
		iso := isoRe.FindStringSubmatchIndex(l)

		// When both shapes appear on one line, the earlier match wins.
		if dmy != nil && (iso == nil || dmy[0] <= iso[0]) {
			m := dmyRe.FindStringSubmatch(l)
			if d, ok := canonicalDate(m[3], m[2], m[1]); ok {
				return d, i
			}
		}
		if iso != nil {
			m := isoRe.FindStringSubmatch(l)
			if d, ok := canonicalDate(m[1], m[2], m[3]); ok {
				return d, i
			}
		}
	}
	return "", -1
}

func canonicalDate(year, month, day string) (string, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		// Rejects impossible dates like 31/02 that time.Date would roll over.
		return "", false
	}
	return t.Format(api.DateLayout), true
}

// detectTotal returns the receipt total and the index of the line it came
// from. With no "total"-marked line it falls back to the largest
// decimal-pointed token outside the date line, returning line index -1.
func detectTotal(lines []string, dateLine int) (decimal.Decimal, int) {
	for i := len(lines) - 1; i >= 0; i-- {
		if m := totalRe.FindStringSubmatch(lines[i]); m != nil {
			if v, err := decimal.NewFromString(m[1]); err == nil {
				return v, i
			}
		}
	}

	max := decimal.Zero
	for i, l := range lines {
		if i == dateLine {
			continue
		}
		for _, tok := range priceRe.FindAllString(l, -1) {
			if v, err := decimal.NewFromString(tok); err == nil && v.GreaterThan(max) {
				max = v
			}
		}
	}
	return max, -1
}

func detectShop(lines []string, dateLine int) (string, int) {
	for i, l := range lines {
		if i == dateLine {
			continue
		}
		if alphaRe.MatchString(l) && !digitRe.MatchString(l) {
			return l, i
		}
	}
	return "", -1
}
