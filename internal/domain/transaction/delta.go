package transaction

import (
	"centavo/internal/domain/money"
)

// SignedDelta computes the balance-holder delta caused by one transaction
// as an exact decimal string.
//
// Sign convention: an expense decreases an account balance but increases a
// credit card's outstanding balance (debt grows); an income increases an
// account balance but decreases a card's outstanding balance (a refund or
// payment). The asymmetry between the two holder kinds is intentional.
func SignedDelta(txType Type, source Source, value string) (string, error) {
	d, err := money.Parse(value)
	if err != nil {
		return "", err
	}
	abs := d.Abs()
	if abs.IsZero() {
		return money.Zero, nil
	}

	negative := (source == SourceAccount && txType == TypeExpense) ||
		(source == SourceCreditCard && txType == TypeIncome)
	if negative {
		return abs.Neg().StringFixed(2), nil
	}
	return abs.StringFixed(2), nil
}
