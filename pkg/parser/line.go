// Package parser extracts structured expense candidates from typed messages
// and from recognized receipt text.
package parser

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/belanjabot/belanjabot/pkg/api"
)

// Parse failures for typed expense lines. Both are recoverable: the
// conversation layer re-prompts with a format example instead of persisting.
var (
	// ErrNoAmount means the text carries no recognizable RM amount.
	ErrNoAmount = errors.New("no RM amount in text")
	// ErrNoItem means an amount was found but no item description remains.
	ErrNoItem = errors.New("no item description in text")
)

// amountRe matches the first RM-marked amount with up to two fractional
// digits. A bare number without the RM marker is deliberately not an amount;
// it could be an item count.
var amountRe = regexp.MustCompile(`(?i)rm\s?(\d+(?:\.\d{1,2})?)`)

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// ParseLine turns one free-text expense message into a candidate.
// Supported shapes, in any order around the amount:
//
//	"nasi ayam rm10.50"
//	"RM5.20 Nasi Lemak Warung Haji"
//	"nasi lemak rm5 kedai ali"
//
// The side of the amount with more words becomes the item, the other the
// location; ties go to the text before the amount. Date and time default
// to now.
func ParseLine(text string, now time.Time) (api.Expense, error) {
	text = strings.TrimSpace(text)

	m := amountRe.FindStringSubmatchIndex(text)
	if m == nil {
		return api.Expense{}, ErrNoAmount
	}

	amount, err := decimal.NewFromString(text[m[2]:m[3]])
	if err != nil {
		return api.Expense{}, ErrNoAmount
	}

	before := strings.TrimSpace(text[:m[0]])
	after := strings.TrimSpace(text[m[1]:])

	var item, location string
	if len(strings.Fields(before)) >= len(strings.Fields(after)) {
		item, location = before, after
	} else {
		item, location = after, before
	}

	if item == "" {
		return api.Expense{}, ErrNoItem
	}

	location = titleCase(location)
	if location == "" {
		location = api.LocationPlaceholder
	}

	return api.Expense{
		Item:      titleCase(item),
		Location:  location,
		Amount:    amount,
		Date:      now.Format(api.DateLayout),
		Time:      now.Format(api.TimeLayout),
		ItemCount: 1,
	}, nil
}
