package transaction

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"centavo/internal/domain/account"
	"centavo/internal/domain/creditcard"
	"centavo/internal/domain/tag"
)

func newTestValidator() *Validator {
	accounts, cards, categories, subcategories, tags := newTestLookups()
	return NewValidator(accounts, cards, categories, subcategories, tags)
}

func TestResolveOwner(t *testing.T) {
	v := newTestValidator()
	ctx := context.Background()

	tests := []struct {
		name         string
		source       Source
		accountID    *int64
		creditCardID *int64
		wantUserID   int64
		wantErr      error
	}{
		{name: "existing account", source: SourceAccount, accountID: int64Ptr(1), wantUserID: 7},
		{name: "existing card", source: SourceCreditCard, creditCardID: int64Ptr(2), wantUserID: 7},
		{name: "missing account", source: SourceAccount, accountID: int64Ptr(99), wantErr: account.ErrAccountNotFound},
		{name: "missing card", source: SourceCreditCard, creditCardID: int64Ptr(99), wantErr: creditcard.ErrCreditCardNotFound},
		{name: "account source with nil reference", source: SourceAccount, wantErr: account.ErrAccountNotFound},
		{name: "card source with nil reference", source: SourceCreditCard, wantErr: creditcard.ErrCreditCardNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := v.ResolveOwner(ctx, tt.source, tt.accountID, tt.creditCardID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveOwner() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveOwner() failed: %v", err)
			}
			if userID != tt.wantUserID {
				t.Errorf("ResolveOwner() = %d, want %d", userID, tt.wantUserID)
			}
		})
	}
}

func TestValidateClassification(t *testing.T) {
	v := newTestValidator()
	ctx := context.Background()

	tests := []struct {
		name          string
		categoryID    *int64
		subcategoryID *int64
		wantErr       error
	}{
		{name: "category only", categoryID: int64Ptr(10)},
		{name: "subcategory only", subcategoryID: int64Ptr(20)},
		{name: "both present", categoryID: int64Ptr(10), subcategoryID: int64Ptr(20)},
		{name: "neither present", wantErr: ErrCategoryOrSubcategoryRequired},
		{name: "inactive category", categoryID: int64Ptr(11), wantErr: ErrCategoryNotFoundOrInactive},
		{name: "missing category", categoryID: int64Ptr(99), wantErr: ErrCategoryNotFoundOrInactive},
		{name: "missing subcategory", subcategoryID: int64Ptr(99), wantErr: ErrSubcategoryNotFoundOrInactive},
		{name: "valid category with missing subcategory", categoryID: int64Ptr(10), subcategoryID: int64Ptr(99), wantErr: ErrSubcategoryNotFoundOrInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateClassification(ctx, tt.categoryID, tt.subcategoryID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateClassification() failed: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateClassification() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTags(t *testing.T) {
	v := newTestValidator()
	ctx := context.Background()

	t.Run("deduplicates preserving first-seen order", func(t *testing.T) {
		got, err := v.ValidateTags(ctx, []int64{5, 3, 5, 3, 8}, 7)
		if err != nil {
			t.Fatalf("ValidateTags() failed: %v", err)
		}
		if want := []int64{5, 3, 8}; !reflect.DeepEqual(got, want) {
			t.Errorf("ValidateTags() = %v, want %v", got, want)
		}
	})

	t.Run("empty input yields empty set", func(t *testing.T) {
		got, err := v.ValidateTags(ctx, []int64{}, 7)
		if err != nil {
			t.Fatalf("ValidateTags() failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ValidateTags() = %v, want empty", got)
		}
	})

	t.Run("partial match fails whole set", func(t *testing.T) {
		if _, err := v.ValidateTags(ctx, []int64{3, 99}, 7); !errors.Is(err, tag.ErrTagNotFound) {
			t.Errorf("ValidateTags() = %v, want %v", err, tag.ErrTagNotFound)
		}
	})

	t.Run("foreign owner sees nothing", func(t *testing.T) {
		if _, err := v.ValidateTags(ctx, []int64{3}, 42); !errors.Is(err, tag.ErrTagNotFound) {
			t.Errorf("ValidateTags() = %v, want %v", err, tag.ErrTagNotFound)
		}
	})
}

func TestDedupeIDs(t *testing.T) {
	if got := dedupeIDs(nil); len(got) != 0 {
		t.Errorf("dedupeIDs(nil) = %v, want empty", got)
	}
	if got, want := dedupeIDs([]int64{1, 1, 2, 1, 3, 2}), []int64{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeIDs() = %v, want %v", got, want)
	}
}
