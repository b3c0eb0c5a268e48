package ledger

import (
	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/shopspring/decimal"
)

// Delta returns the signed balance adjustment for a transaction: negative for
// expenses, positive for income. Amount is expected non-negative; validation
// happens at the input boundary.
func Delta(t domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == domain.TypeExpense {
		return amount.Neg()
	}
	return amount
}

// NetDelta returns the incremental balance adjustment when a transaction's
// type or amount is edited: newDelta - oldDelta. Applying the result as a
// relative increment keeps the balance correct even if other transactions
// land on the account between the read and the write.
func NetDelta(oldType, newType domain.TransactionType, oldAmount, newAmount decimal.Decimal) decimal.Decimal {
	return Delta(newType, newAmount).Sub(Delta(oldType, oldAmount))
}
