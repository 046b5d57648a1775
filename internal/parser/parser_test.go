package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbuddy/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantAmount    float64
		wantDirection model.Direction
		wantCategory  model.Category
	}{
		{
			name:          "upi payment with prefix currency",
			text:          "You paid Rs. 250 to Swiggy",
			wantAmount:    250,
			wantDirection: model.DirectionExpense,
			wantCategory:  model.CategoryFood,
		},
		{
			name:          "debit with INR and thousands separator",
			text:          "INR 1,250.50 debited from A/c XX1234 for Amazon order",
			wantAmount:    1250.50,
			wantDirection: model.DirectionExpense,
			wantCategory:  model.CategoryShopping,
		},
		{
			name:          "suffix currency",
			text:          "500 Rs withdrawn at ATM",
			wantAmount:    500,
			wantDirection: model.DirectionExpense,
			wantCategory:  model.CategoryOther,
		},
		{
			name:          "rupee symbol",
			text:          "₹99 spent on Spotify",
			wantAmount:    99,
			wantDirection: model.DirectionExpense,
			wantCategory:  model.CategoryEntertainment,
		},
		{
			name:          "incoming transfer",
			text:          "Priya sent you Rs. 1200",
			wantAmount:    1200,
			wantDirection: model.DirectionIncome,
			wantCategory:  model.CategoryOther,
		},
		{
			name:          "salary credit",
			text:          "Salary of Rs. 85,000.00 credited to your account",
			wantAmount:    85000,
			wantDirection: model.DirectionIncome,
			wantCategory:  model.CategorySalary,
		},
		{
			name:          "refund outranks generic payment phrase",
			text:          "Refund of Rs. 320 for your payment has been processed",
			wantAmount:    320,
			wantDirection: model.DirectionIncome,
			wantCategory:  model.CategoryRefund,
		},
		{
			name:          "cashback credit",
			text:          "You got cashback of ₹ 15",
			wantAmount:    15,
			wantDirection: model.DirectionIncome,
			wantCategory:  model.CategoryRefund,
		},
		{
			name:          "paid you outranks you paid",
			text:          "Rahul paid you Rs. 400",
			wantAmount:    400,
			wantDirection: model.DirectionIncome,
			wantCategory:  model.CategoryOther,
		},
		{
			name:          "transport expense",
			text:          "Payment of Rs.180 to Uber successful",
			wantAmount:    180,
			wantDirection: model.DirectionExpense,
			wantCategory:  model.CategoryTransport,
		},
		{
			name:          "bill payment",
			text:          "Electricity bill of Rs. 2,340 debited",
			wantAmount:    2340,
			wantDirection: model.DirectionExpense,
			wantCategory:  model.CategoryBills,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := Parse(tt.text)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAmount, tx.Amount)
			assert.Equal(t, tt.wantDirection, tx.Direction)
			assert.Equal(t, tt.wantCategory, tx.Category)
			assert.Equal(t, tt.wantCategory.Icon(), tx.Icon)
			assert.Equal(t, tt.text, tx.Note)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{
			name:    "no transaction language",
			text:    "Your OTP for login is 482913",
			wantErr: ErrNoDirection,
		},
		{
			name:    "direction without amount",
			text:    "You paid for your order",
			wantErr: ErrNoAmount,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: ErrNoDirection,
		},
		{
			name:    "zero amount",
			text:    "You paid Rs. 0 to merchant",
			wantErr: ErrNoAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrUnparseable)
		})
	}
}

func TestParseErrorsWrapUnparseable(t *testing.T) {
	_, err := Parse("hello world")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparseable), "parse failures must route to the unparsed queue")
}

func TestDetectDirectionPrecedence(t *testing.T) {
	// "received from" sits in an earlier group than "debited", so the
	// income reading wins even when both phrases appear.
	dir, ok := detectDirection("received from employer, will be debited later")
	require.True(t, ok)
	assert.Equal(t, model.DirectionIncome, dir)
}

func TestDetectCategoryUsesDirectionTable(t *testing.T) {
	// "interest" is only an income keyword; the same text on the expense
	// side falls through to Other.
	assert.Equal(t, model.CategoryInterest, detectCategory("interest credited", model.DirectionIncome))
	assert.Equal(t, model.CategoryOther, detectCategory("interest credited", model.DirectionExpense))
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"prefix with dot and space", "Rs. 1,000", 1000},
		{"prefix without space", "Rs.45.50", 45.50},
		{"inr prefix", "INR 300", 300},
		{"suffix with space", "250 Rs", 250},
		{"suffix rupee symbol", "99₹", 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractAmount(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
