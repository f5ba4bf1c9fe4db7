package spreadsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderNumber(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"number sign", "Заказ покупателя № 2351 от 8 декабря 2025 г.", "2351", true},
		{"number sign without space", "Заказ №42", "42", true},
		{"first digits", "Заказ 918 от 1 мая 2024", "918", true},
		{"no digits", "Заказ покупателя", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOrderNumber(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSyntheticOrderNumber(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "ORDER_20250304050607", SyntheticOrderNumber(now))
}

func TestParseOrderDate(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)
	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"genitive month", "Заказ покупателя № 2351 от 8 декабря 2025 г.", time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC)},
		{"capitalized month", "№ 1 от 15 Марта 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"no date", "Заказ покупателя № 2351", today},
		{"unknown month", "№ 1 от 3 brumaire 2024", today},
		{"impossible day", "№ 1 от 31 февраля 2024", today},
		{"empty", "", today},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrderDate(tt.text, now))
		})
	}
}
