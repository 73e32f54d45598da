// Package validation holds the input boundary checks. The aggregation
// engine assumes well-formed numeric input; everything coming off the
// wire is validated here first.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrInvalidTicker   = errors.New("ticker must be 1-10 uppercase letters, digits, '.' or '-'")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrInvalidPrice    = errors.New("price must be a positive number")
	ErrInvalidRate     = errors.New("exchange rate must be a positive number")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidDate     = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTxType   = errors.New("transaction type must be 'buy' or 'sell'")
	ErrInvalidPin      = errors.New("pin must be 4 to 6 digits")
)

var (
	tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	pinPattern    = regexp.MustCompile(`^\d{4,6}$`)
)

// NormalizeTicker uppercases and trims a ticker symbol and validates its
// shape.
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", ErrInvalidTicker
	}
	return ticker, nil
}

func ValidatePositive(v float64, sentinel error) error {
	if v <= 0 {
		return sentinel
	}
	return nil
}

func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return ErrInvalidDate
	}
	return nil
}

func ValidateTxType(txType string) error {
	if txType != "buy" && txType != "sell" {
		return ErrInvalidTxType
	}
	return nil
}

func ValidatePin(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPin
	}
	return nil
}

// StripUnprintable removes non-printable characters from free text,
// allowing common whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
