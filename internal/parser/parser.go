// Package parser extracts structured transactions from free-text
// notification content.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ledgerbuddy/internal/model"
)

// Parse failure sentinels. Both wrap ErrUnparseable so callers can route
// any parse failure to the unparsed queue with a single errors.Is check.
var (
	ErrUnparseable = errors.New("text does not describe a transaction")
	ErrNoDirection = fmt.Errorf("%w: no direction phrase", ErrUnparseable)
	ErrNoAmount    = fmt.Errorf("%w: no parseable amount", ErrUnparseable)
)

// phraseGroup is an ordered set of phrases that all imply the same
// direction. Groups are scanned in order and the first phrase hit wins,
// so specific phrases ("paid to") must appear in an earlier group than
// their generic substrings ("payment").
type phraseGroup struct {
	direction model.Direction
	phrases   []string
}

var directionGroups = []phraseGroup{
	{model.DirectionIncome, []string{"paid you", "sent you", "received from"}},
	{model.DirectionExpense, []string{"you paid", "you sent", "paid to", "debited from", "withdrawn"}},
	{model.DirectionIncome, []string{"credited to", "refund", "cashback"}},
	{model.DirectionExpense, []string{"debited", "spent", "payment"}},
	{model.DirectionIncome, []string{"credited", "received"}},
}

// amountPattern matches a currency-prefixed or currency-suffixed numeral
// with optional thousands separators and decimal part.
var amountPattern = regexp.MustCompile(`(?i)(?:Rs\.?\s?|INR\s?|₹\s?)([0-9,]+\.?[0-9]*)|([0-9,]+\.?[0-9]*)\s?(?:Rs\.?|INR|₹)`)

// Parse turns raw notification text into a transaction. The returned
// transaction carries amount, direction, category, icon and note; the
// caller fills in source, detection instant and fingerprint.
func Parse(text string) (model.Transaction, error) {
	lower := strings.ToLower(text)

	direction, ok := detectDirection(lower)
	if !ok {
		return model.Transaction{}, ErrNoDirection
	}

	amount, err := extractAmount(text)
	if err != nil {
		return model.Transaction{}, err
	}

	category := detectCategory(lower, direction)

	return model.Transaction{
		Amount:    amount,
		Direction: direction,
		Category:  category,
		Icon:      category.Icon(),
		Note:      model.TruncateNote(text),
	}, nil
}

func detectDirection(lower string) (model.Direction, bool) {
	for _, group := range directionGroups {
		for _, phrase := range group.phrases {
			if strings.Contains(lower, phrase) {
				return group.direction, true
			}
		}
	}
	return "", false
}

func extractAmount(text string) (float64, error) {
	match := amountPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, ErrNoAmount
	}

	raw := match[1]
	if raw == "" {
		raw = match[2]
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoAmount, raw)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: non-positive amount %v", ErrNoAmount, amount)
	}
	return amount, nil
}
