package transaction

import (
	"context"

	"centavo/internal/domain/money"
)

// Service orchestrates transaction mutations: it validates classification
// and ownership, computes the signed balance delta, and runs the row write,
// the atomic balance application, and the tag-link replacement inside one
// all-or-nothing unit of work. Rollback is the store's job; the service
// performs no manual compensation once a unit of work has begun.
type Service struct {
	uow       UnitOfWork
	repo      Repository
	validator *Validator
}

func NewService(uow UnitOfWork, repo Repository, validator *Validator) *Service {
	return &Service{
		uow:       uow,
		repo:      repo,
		validator: validator,
	}
}

// Create validates input, then atomically inserts the row, applies the
// signed delta to the owning holder (skipped when the delta is zero), and
// replaces tag associations when a tag set was supplied.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	value, err := normalizeValue(params.Value)
	if err != nil {
		return nil, err
	}
	params.Value = value

	if err := params.Validate(); err != nil {
		return nil, err
	}

	userID, err := s.validator.ResolveOwner(ctx, params.Source, params.AccountID, params.CreditCardID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateClassification(ctx, params.CategoryID, params.SubcategoryID); err != nil {
		return nil, err
	}

	var tagIDs []int64
	if params.TagIDs != nil {
		tagIDs, err = s.validator.ValidateTags(ctx, params.TagIDs, userID)
		if err != nil {
			return nil, err
		}
		params.TagIDs = tagIDs
	}

	delta, err := SignedDelta(params.Type, params.Source, params.Value)
	if err != nil {
		return nil, err
	}

	var created *Transaction
	err = s.uow.Run(ctx, func(ops MutationOps) error {
		var err error
		created, err = ops.Records().Insert(ctx, params)
		if err != nil {
			return err
		}
		if !money.IsZero(delta) {
			if err := ops.Balances(params.Source).ApplyDelta(ctx, created.HolderID(), delta); err != nil {
				return err
			}
		}
		if params.TagIDs != nil {
			if err := ops.TagLinks().Replace(ctx, created.ID, tagIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tagIDs == nil {
		tagIDs = []int64{}
	}
	created.Tags = tagIDs
	return created, nil
}

// Update lock-reads the row, overlays the patch onto the current state,
// re-validates the effective state, and reconciles balances. When source,
// holder, and signed delta are all unchanged, no balance statement is
// issued; otherwise the old delta is inverted against the old holder and
// the new delta applied to the new holder as two sequential atomic
// statements, even when both holders are the same row.
func (s *Service) Update(ctx context.Context, id int64, patch UpdateParams) (*Transaction, error) {
	var updated *Transaction
	var tagIDs []int64

	err := s.uow.Run(ctx, func(ops MutationOps) error {
		current, err := ops.Records().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrTransactionNotFound
		}

		next, err := overlay(current, patch)
		if err != nil {
			return err
		}

		userID, err := s.validator.ResolveOwner(ctx, next.Source, next.AccountID, next.CreditCardID)
		if err != nil {
			return err
		}
		if err := s.validator.ValidateClassification(ctx, next.CategoryID, next.SubcategoryID); err != nil {
			return err
		}
		if patch.TagIDs != nil {
			tagIDs, err = s.validator.ValidateTags(ctx, patch.TagIDs, userID)
			if err != nil {
				return err
			}
		}

		oldDelta, err := SignedDelta(current.Type, current.Source, current.Value)
		if err != nil {
			return err
		}
		newDelta, err := SignedDelta(next.Type, next.Source, next.Value)
		if err != nil {
			return err
		}

		sameEffect := current.Source == next.Source &&
			current.HolderID() == next.HolderID() &&
			oldDelta == newDelta
		if !sameEffect {
			if !money.IsZero(oldDelta) {
				inverted, err := money.Invert(oldDelta)
				if err != nil {
					return err
				}
				if err := ops.Balances(current.Source).ApplyDelta(ctx, current.HolderID(), inverted); err != nil {
					return err
				}
			}
			if !money.IsZero(newDelta) {
				if err := ops.Balances(next.Source).ApplyDelta(ctx, next.HolderID(), newDelta); err != nil {
					return err
				}
			}
		}

		updated, err = ops.Records().Update(ctx, next)
		if err != nil {
			return err
		}

		if patch.TagIDs != nil {
			return ops.TagLinks().Replace(ctx, id, tagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if patch.TagIDs != nil {
		updated.Tags = tagIDs
		return updated, nil
	}

	tags, err := s.repo.ListTagIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	updated.Tags = tags
	return updated, nil
}

// Delete lock-reads the row, removes it together with its tag
// associations, and reverses the transaction's lifetime balance effect by
// applying the inverted delta to its holder, all in one unit of work.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	err := s.uow.Run(ctx, func(ops MutationOps) error {
		current, err := ops.Records().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrTransactionNotFound
		}

		if err := ops.TagLinks().Replace(ctx, id, nil); err != nil {
			return err
		}
		if err := ops.Records().Delete(ctx, id); err != nil {
			return err
		}

		delta, err := SignedDelta(current.Type, current.Source, current.Value)
		if err != nil {
			return err
		}
		if money.IsZero(delta) {
			return nil
		}
		inverted, err := money.Invert(delta)
		if err != nil {
			return err
		}
		return ops.Balances(current.Source).ApplyDelta(ctx, current.HolderID(), inverted)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns a transaction enriched with its tag id set.
func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}

	tags, err := s.repo.ListTagIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	return t, nil
}

// ListByAccount returns transactions for one account, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Transaction, error) {
	return s.repo.ListByAccountID(ctx, accountID, limit, offset)
}

// ListByCreditCard returns transactions for one credit card, newest first.
func (s *Service) ListByCreditCard(ctx context.Context, creditCardID int64, limit, offset int) ([]*Transaction, error) {
	return s.repo.ListByCreditCardID(ctx, creditCardID, limit, offset)
}

// overlay applies a patch to a copy of the current row and enforces the
// holder-exclusivity invariant on the effective state.
func overlay(current *Transaction, patch UpdateParams) (*Transaction, error) {
	next := *current

	if patch.Value != nil {
		v, err := normalizeValue(*patch.Value)
		if err != nil {
			return nil, err
		}
		next.Value = v
	}
	if patch.Date != nil {
		next.Date = *patch.Date
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, ErrInvalidType
		}
		next.Type = *patch.Type
	}
	if patch.Source != nil {
		if !patch.Source.Valid() {
			return nil, ErrInvalidSource
		}
		next.Source = *patch.Source
	}
	if patch.AccountID != nil {
		next.AccountID = patch.AccountID
	}
	if patch.CreditCardID != nil {
		next.CreditCardID = patch.CreditCardID
	}
	if patch.CategoryID != nil {
		next.CategoryID = patch.CategoryID
	}
	if patch.SubcategoryID != nil {
		next.SubcategoryID = patch.SubcategoryID
	}
	if patch.IsInstallment != nil {
		next.IsInstallment = *patch.IsInstallment
	}
	if patch.TotalMonths != nil {
		next.TotalMonths = patch.TotalMonths
	}
	if patch.IsRecurring != nil {
		next.IsRecurring = *patch.IsRecurring
	}
	if patch.PaymentDay != nil {
		next.PaymentDay = patch.PaymentDay
	}
	if patch.Active != nil {
		next.Active = *patch.Active
	}
	if patch.Observation != nil {
		next.Observation = patch.Observation
	}

	// A transaction never references both holder kinds at once.
	switch next.Source {
	case SourceAccount:
		next.CreditCardID = nil
	case SourceCreditCard:
		next.AccountID = nil
	}

	return &next, nil
}

func normalizeValue(s string) (string, error) {
	d, err := money.Parse(s)
	if err != nil || d.IsNegative() {
		return "", ErrInvalidValue
	}
	return d.StringFixed(2), nil
}
