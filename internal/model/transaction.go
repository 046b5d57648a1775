// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// Direction indicates whether money left or entered the account.
type Direction string

// Transaction direction constants.
const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
)

// Valid reports whether the direction is one of the known values.
func (d Direction) Valid() bool {
	return d == DirectionExpense || d == DirectionIncome
}

// Category is the closed set of transaction categories.
type Category string

// Transaction category constants.
const (
	CategoryFood          Category = "Food"
	CategoryShopping      Category = "Shopping"
	CategoryTransport     Category = "Transport"
	CategoryBills         Category = "Bills"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategorySalary        Category = "Salary"
	CategoryRefund        Category = "Refund"
	CategoryInterest      Category = "Interest"
	CategoryOther         Category = "Other"
)

// categoryIcons maps each category to its glyph code point.
var categoryIcons = map[Category]int{
	CategoryFood:          0xe56c,
	CategoryShopping:      0xe8cc,
	CategoryTransport:     0xe531,
	CategoryBills:         0xe8b0,
	CategoryEntertainment: 0xe404,
	CategoryHealth:        0xe3f3,
	CategorySalary:        0xe263,
	CategoryRefund:        0xe5d5,
	CategoryInterest:      0xe227,
	CategoryOther:         0xe8f4,
}

// Icon returns the glyph code point for the category.
// Unknown categories fall back to the Other glyph.
func (c Category) Icon() int {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return categoryIcons[CategoryOther]
}

// Valid reports whether the category is part of the closed enum.
func (c Category) Valid() bool {
	_, ok := categoryIcons[c]
	return ok
}

// NoteMaxLength bounds the free-text note stored with a transaction.
const NoteMaxLength = 100

// Transaction represents a single financial transaction extracted from a
// notification text.
type Transaction struct {
	DetectedAt  time.Time
	Fingerprint string
	SourceApp   string
	Note        string
	Category    Category
	Direction   Direction
	Icon        int
	Amount      float64
}

// TruncateNote bounds a note to NoteMaxLength runes, preserving the
// original casing of the text.
func TruncateNote(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > NoteMaxLength {
		runes = runes[:NoteMaxLength]
	}
	return string(runes)
}
