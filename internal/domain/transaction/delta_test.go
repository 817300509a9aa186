package transaction

import "testing"

func TestSignedDelta(t *testing.T) {
	tests := []struct {
		name   string
		txType Type
		source Source
		value  string
		want   string
	}{
		{name: "expense on account decreases balance", txType: TypeExpense, source: SourceAccount, value: "150.00", want: "-150.00"},
		{name: "income on account increases balance", txType: TypeIncome, source: SourceAccount, value: "150.00", want: "150.00"},
		{name: "expense on card grows outstanding balance", txType: TypeExpense, source: SourceCreditCard, value: "150.00", want: "150.00"},
		{name: "income on card shrinks outstanding balance", txType: TypeIncome, source: SourceCreditCard, value: "150.00", want: "-150.00"},
		{name: "zero value maps to canonical zero", txType: TypeExpense, source: SourceAccount, value: "0.00", want: "0.00"},
		{name: "magnitude is normalized to two places", txType: TypeIncome, source: SourceAccount, value: "1.5", want: "1.50"},
		{name: "large value keeps exact digits", txType: TypeExpense, source: SourceAccount, value: "99999999.99", want: "-99999999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignedDelta(tt.txType, tt.source, tt.value)
			if err != nil {
				t.Fatalf("SignedDelta(%s, %s, %q) failed: %v", tt.txType, tt.source, tt.value, err)
			}
			if got != tt.want {
				t.Errorf("SignedDelta(%s, %s, %q) = %q, want %q", tt.txType, tt.source, tt.value, got, tt.want)
			}
		})
	}
}

func TestSignedDelta_InvalidValue(t *testing.T) {
	if _, err := SignedDelta(TypeExpense, SourceAccount, "abc"); err == nil {
		t.Error("SignedDelta with invalid value expected error, got nil")
	}
}
