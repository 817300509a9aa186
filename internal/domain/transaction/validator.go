package transaction

import (
	"context"

	"centavo/internal/domain/account"
	"centavo/internal/domain/creditcard"
	"centavo/internal/domain/tag"
)

// Validator runs the classification and ownership checks that gate every
// mutation. All of its checks are plain reads; it never opens or joins a
// unit of work.
type Validator struct {
	accounts      AccountLookup
	cards         CreditCardLookup
	categories    CategoryLookup
	subcategories SubcategoryLookup
	tags          TagLookup
}

func NewValidator(
	accounts AccountLookup,
	cards CreditCardLookup,
	categories CategoryLookup,
	subcategories SubcategoryLookup,
	tags TagLookup,
) *Validator {
	return &Validator{
		accounts:      accounts,
		cards:         cards,
		categories:    categories,
		subcategories: subcategories,
		tags:          tags,
	}
}

// ResolveOwner confirms the referenced balance holder exists and returns
// the id of the user who owns it.
func (v *Validator) ResolveOwner(ctx context.Context, source Source, accountID, creditCardID *int64) (int64, error) {
	switch source {
	case SourceCreditCard:
		if creditCardID == nil {
			return 0, creditcard.ErrCreditCardNotFound
		}
		card, err := v.cards.GetByID(ctx, *creditCardID)
		if err != nil {
			return 0, err
		}
		if card == nil {
			return 0, creditcard.ErrCreditCardNotFound
		}
		return card.UserID, nil
	default:
		if accountID == nil {
			return 0, account.ErrAccountNotFound
		}
		acc, err := v.accounts.GetByID(ctx, *accountID)
		if err != nil {
			return 0, err
		}
		if acc == nil {
			return 0, account.ErrAccountNotFound
		}
		return acc.UserID, nil
	}
}

// ValidateClassification enforces that at least one of category and
// subcategory is present and that whichever is present exists and is
// active.
func (v *Validator) ValidateClassification(ctx context.Context, categoryID, subcategoryID *int64) error {
	if categoryID == nil && subcategoryID == nil {
		return ErrCategoryOrSubcategoryRequired
	}

	if categoryID != nil {
		cat, err := v.categories.GetByID(ctx, *categoryID)
		if err != nil {
			return err
		}
		if cat == nil || !cat.Active {
			return ErrCategoryNotFoundOrInactive
		}
	}

	if subcategoryID != nil {
		sub, err := v.subcategories.GetByID(ctx, *subcategoryID)
		if err != nil {
			return err
		}
		if sub == nil || !sub.Active {
			return ErrSubcategoryNotFoundOrInactive
		}
	}

	return nil
}

// ValidateTags deduplicates tagIDs and confirms every id resolves to an
// active tag owned by userID. A partial match fails: either all supplied
// tags belong to the user, or the mutation is rejected. Returns the
// deduplicated ids in input order.
func (v *Validator) ValidateTags(ctx context.Context, tagIDs []int64, userID int64) ([]int64, error) {
	deduped := dedupeIDs(tagIDs)
	if len(deduped) == 0 {
		return []int64{}, nil
	}

	found, err := v.tags.FindByIDsForUser(ctx, deduped, userID, true)
	if err != nil {
		return nil, err
	}
	if len(found) != len(deduped) {
		return nil, tag.ErrTagNotFound
	}

	return deduped, nil
}

// dedupeIDs collapses duplicate ids, preserving first-seen order.
func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
