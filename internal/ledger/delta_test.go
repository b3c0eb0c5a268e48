package ledger

import (
	"testing"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/shopspring/decimal"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name   string
		txType domain.TransactionType
		amount string
		want   string
	}{
		{"expense is negative", domain.TypeExpense, "100", "-100"},
		{"income is positive", domain.TypeIncome, "100", "100"},
		{"zero expense", domain.TypeExpense, "0", "0"},
		{"zero income", domain.TypeIncome, "0", "0"},
		{"fractional expense", domain.TypeExpense, "19.99", "-19.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			want := decimal.RequireFromString(tt.want)

			got := Delta(tt.txType, amount)
			if !got.Equal(want) {
				t.Errorf("Delta(%s, %s) = %s, want %s", tt.txType, tt.amount, got, want)
			}
		})
	}
}

func TestNetDelta(t *testing.T) {
	tests := []struct {
		name               string
		oldType, newType   domain.TransactionType
		oldAmount, newAmount string
		want               string
	}{
		{"expense 100 to expense 150", domain.TypeExpense, domain.TypeExpense, "100", "150", "-50"},
		{"expense 150 to expense 100", domain.TypeExpense, domain.TypeExpense, "150", "100", "50"},
		{"expense to income same amount", domain.TypeExpense, domain.TypeIncome, "100", "100", "200"},
		{"income to expense same amount", domain.TypeIncome, domain.TypeExpense, "100", "100", "-200"},
		{"unchanged", domain.TypeIncome, domain.TypeIncome, "42.50", "42.50", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetDelta(tt.oldType, tt.newType,
				decimal.RequireFromString(tt.oldAmount),
				decimal.RequireFromString(tt.newAmount))
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("NetDelta = %s, want %s", got, want)
			}
		})
	}
}
