package transaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"centavo/internal/domain/account"
	"centavo/internal/domain/category"
	"centavo/internal/domain/creditcard"
	"centavo/internal/domain/money"
	"centavo/internal/domain/tag"
)

// Lookup mocks

type mockAccountLookup struct {
	GetByIDFunc func(ctx context.Context, id int64) (*account.Account, error)
}

func (m *mockAccountLookup) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockCreditCardLookup struct {
	GetByIDFunc func(ctx context.Context, id int64) (*creditcard.CreditCard, error)
}

func (m *mockCreditCardLookup) GetByID(ctx context.Context, id int64) (*creditcard.CreditCard, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockCategoryLookup struct {
	GetByIDFunc func(ctx context.Context, id int64) (*category.Category, error)
}

func (m *mockCategoryLookup) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockSubcategoryLookup struct {
	GetByIDFunc func(ctx context.Context, id int64) (*category.Subcategory, error)
}

func (m *mockSubcategoryLookup) GetByID(ctx context.Context, id int64) (*category.Subcategory, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

type mockTagLookup struct {
	FindByIDsForUserFunc func(ctx context.Context, ids []int64, userID int64, activeOnly bool) ([]*tag.Tag, error)
}

func (m *mockTagLookup) FindByIDsForUser(ctx context.Context, ids []int64, userID int64, activeOnly bool) ([]*tag.Tag, error) {
	if m.FindByIDsForUserFunc != nil {
		return m.FindByIDsForUserFunc(ctx, ids, userID, activeOnly)
	}
	return nil, nil
}

// fakeLedger is an in-memory store standing in for the database. Balance
// deltas are applied with exact decimal arithmetic under a mutex, mirroring
// the atomicity of a single UPDATE statement, and every mutation records an
// undo entry so a failed unit of work rolls back completely.
type fakeLedger struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Transaction
	links  map[int64][]int64

	accountBalances map[int64]string
	cardBalances    map[int64]string

	deltaCalls   []deltaCall
	replaceCalls int

	failInsert  error
	failDelta   error
	failReplace error
}

type deltaCall struct {
	source   Source
	holderID int64
	delta    string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		nextID:          1,
		rows:            make(map[int64]Transaction),
		links:           make(map[int64][]int64),
		accountBalances: make(map[int64]string),
		cardBalances:    make(map[int64]string),
	}
}

func (l *fakeLedger) accountBalance(id int64) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.accountBalances[id]; ok {
		return b
	}
	return money.Zero
}

func (l *fakeLedger) cardBalance(id int64) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.cardBalances[id]; ok {
		return b
	}
	return money.Zero
}

func (l *fakeLedger) rowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func (l *fakeLedger) recordedDeltas() []deltaCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]deltaCall, len(l.deltaCalls))
	copy(out, l.deltaCalls)
	return out
}

func (l *fakeLedger) resetDeltaCalls() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deltaCalls = nil
}

// Repository (read side)

func (l *fakeLedger) GetByID(_ context.Context, id int64) (*Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.rows[id]; ok {
		c := t
		return &c, nil
	}
	return nil, nil
}

func (l *fakeLedger) ListByAccountID(_ context.Context, accountID int64, limit, offset int) ([]*Transaction, error) {
	return l.list(func(t Transaction) bool {
		return t.Source == SourceAccount && t.AccountID != nil && *t.AccountID == accountID
	}, limit, offset), nil
}

func (l *fakeLedger) ListByCreditCardID(_ context.Context, creditCardID int64, limit, offset int) ([]*Transaction, error) {
	return l.list(func(t Transaction) bool {
		return t.Source == SourceCreditCard && t.CreditCardID != nil && *t.CreditCardID == creditCardID
	}, limit, offset), nil
}

func (l *fakeLedger) list(match func(Transaction) bool, limit, offset int) []*Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []*Transaction{}
	ids := make([]int64, 0, len(l.rows))
	for id := range l.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	skipped := 0
	for _, id := range ids {
		t := l.rows[id]
		if !match(t) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		c := t
		out = append(out, &c)
	}
	return out
}

func (l *fakeLedger) ListTagIDs(_ context.Context, transactionID int64) ([]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]int64{}, l.links[transactionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// fakeUnitOfWork binds mutation capabilities to the ledger and rolls back
// every recorded mutation, in reverse order, when fn fails.
type fakeUnitOfWork struct {
	ledger *fakeLedger
}

func (u *fakeUnitOfWork) Run(_ context.Context, fn func(ops MutationOps) error) error {
	j := &journal{}
	if err := fn(&fakeOps{ledger: u.ledger, journal: j}); err != nil {
		j.revert(u.ledger)
		return err
	}
	return nil
}

type journal struct {
	undo []func(l *fakeLedger)
}

func (j *journal) add(fn func(l *fakeLedger)) {
	j.undo = append(j.undo, fn)
}

// revert runs holding the ledger lock; undo funcs must not lock.
func (j *journal) revert(l *fakeLedger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i](l)
	}
}

type fakeOps struct {
	ledger  *fakeLedger
	journal *journal
}

func (o *fakeOps) Records() RecordWriter { return &fakeRecords{o.ledger, o.journal} }

func (o *fakeOps) Balances(source Source) BalanceApplier {
	return &fakeBalances{ledger: o.ledger, journal: o.journal, source: source}
}

func (o *fakeOps) TagLinks() TagLinkWriter { return &fakeTagLinks{o.ledger, o.journal} }

type fakeRecords struct {
	ledger  *fakeLedger
	journal *journal
}

func (r *fakeRecords) Insert(_ context.Context, params CreateParams) (*Transaction, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failInsert != nil {
		return nil, l.failInsert
	}
	id := l.nextID
	l.nextID++
	now := time.Now()
	t := Transaction{
		ID:            id,
		Value:         params.Value,
		Date:          params.Date,
		Type:          params.Type,
		Source:        params.Source,
		AccountID:     params.AccountID,
		CreditCardID:  params.CreditCardID,
		CategoryID:    params.CategoryID,
		SubcategoryID: params.SubcategoryID,
		IsInstallment: params.IsInstallment,
		TotalMonths:   params.TotalMonths,
		IsRecurring:   params.IsRecurring,
		PaymentDay:    params.PaymentDay,
		Active:        true,
		Observation:   params.Observation,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	l.rows[id] = t
	r.journal.add(func(l *fakeLedger) { delete(l.rows, id) })
	c := t
	return &c, nil
}

func (r *fakeRecords) Update(_ context.Context, t *Transaction) (*Transaction, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.rows[t.ID]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	next := *t
	next.UpdatedAt = time.Now()
	l.rows[t.ID] = next
	r.journal.add(func(l *fakeLedger) { l.rows[prev.ID] = prev })
	c := next
	return &c, nil
}

func (r *fakeRecords) Delete(_ context.Context, id int64) error {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.rows[id]
	if !ok {
		return ErrTransactionNotFound
	}
	delete(l.rows, id)
	r.journal.add(func(l *fakeLedger) { l.rows[id] = prev })
	return nil
}

func (r *fakeRecords) FindByIDForUpdate(_ context.Context, id int64) (*Transaction, error) {
	l := r.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.rows[id]; ok {
		c := t
		return &c, nil
	}
	return nil, nil
}

type fakeBalances struct {
	ledger  *fakeLedger
	journal *journal
	source  Source
}

func (b *fakeBalances) ApplyDelta(_ context.Context, holderID int64, delta string) error {
	l := b.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failDelta != nil {
		return l.failDelta
	}
	m := l.accountBalances
	if b.source == SourceCreditCard {
		m = l.cardBalances
	}
	cur, ok := m[holderID]
	if !ok {
		cur = money.Zero
	}
	next, err := money.Add(cur, delta)
	if err != nil {
		return err
	}
	m[holderID] = next
	l.deltaCalls = append(l.deltaCalls, deltaCall{source: b.source, holderID: holderID, delta: delta})

	inverted, err := money.Invert(delta)
	if err != nil {
		return err
	}
	src := b.source
	b.journal.add(func(l *fakeLedger) {
		mm := l.accountBalances
		if src == SourceCreditCard {
			mm = l.cardBalances
		}
		if v, err := money.Add(mm[holderID], inverted); err == nil {
			mm[holderID] = v
		}
	})
	return nil
}

type fakeTagLinks struct {
	ledger  *fakeLedger
	journal *journal
}

func (w *fakeTagLinks) Replace(_ context.Context, transactionID int64, tagIDs []int64) error {
	l := w.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failReplace != nil {
		return l.failReplace
	}
	prev, had := l.links[transactionID]
	if len(tagIDs) == 0 {
		delete(l.links, transactionID)
	} else {
		l.links[transactionID] = append([]int64{}, tagIDs...)
	}
	l.replaceCalls++
	w.journal.add(func(l *fakeLedger) {
		if had {
			l.links[transactionID] = prev
		} else {
			delete(l.links, transactionID)
		}
	})
	return nil
}

// Shared fixture: user 7 owns account 1, credit card 2, active category 10,
// inactive category 11, subcategory 20, and tags 3, 5, 8.
func newTestLookups() (*mockAccountLookup, *mockCreditCardLookup, *mockCategoryLookup, *mockSubcategoryLookup, *mockTagLookup) {
	accounts := &mockAccountLookup{GetByIDFunc: func(_ context.Context, id int64) (*account.Account, error) {
		if id == 1 {
			return &account.Account{ID: 1, UserID: 7, Name: "Checking", Balance: "100.00", Active: true}, nil
		}
		return nil, nil
	}}
	cards := &mockCreditCardLookup{GetByIDFunc: func(_ context.Context, id int64) (*creditcard.CreditCard, error) {
		if id == 2 {
			return &creditcard.CreditCard{ID: 2, UserID: 7, Name: "Gold", Balance: "50.00", ClosingDay: 5, DueDay: 12, Active: true}, nil
		}
		return nil, nil
	}}
	categories := &mockCategoryLookup{GetByIDFunc: func(_ context.Context, id int64) (*category.Category, error) {
		switch id {
		case 10:
			return &category.Category{ID: 10, UserID: 7, Name: "Groceries", Active: true}, nil
		case 11:
			return &category.Category{ID: 11, UserID: 7, Name: "Archived", Active: false}, nil
		}
		return nil, nil
	}}
	subcategories := &mockSubcategoryLookup{GetByIDFunc: func(_ context.Context, id int64) (*category.Subcategory, error) {
		if id == 20 {
			return &category.Subcategory{ID: 20, CategoryID: 10, Name: "Produce", Active: true}, nil
		}
		return nil, nil
	}}
	tags := &mockTagLookup{FindByIDsForUserFunc: func(_ context.Context, ids []int64, userID int64, _ bool) ([]*tag.Tag, error) {
		owned := map[int64]bool{3: true, 5: true, 8: true}
		var out []*tag.Tag
		for _, id := range ids {
			if userID == 7 && owned[id] {
				out = append(out, &tag.Tag{ID: id, UserID: 7, Active: true})
			}
		}
		return out, nil
	}}
	return accounts, cards, categories, subcategories, tags
}

func newTestService() (*Service, *fakeLedger) {
	ledger := newFakeLedger()
	ledger.accountBalances[1] = "100.00"
	ledger.cardBalances[2] = "50.00"

	accounts, cards, categories, subcategories, tags := newTestLookups()
	v := NewValidator(accounts, cards, categories, subcategories, tags)
	return NewService(&fakeUnitOfWork{ledger: ledger}, ledger, v), ledger
}
