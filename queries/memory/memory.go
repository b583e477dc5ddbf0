// Package memory is an in-process Storage used for local runs and tests. A
// transaction works on a copy of the whole state and swaps it in on commit,
// so units of work are serialized and atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries"
)

type state struct {
	creators     map[string]model.Creator
	codes        map[string]model.ReferralCode
	memberships  map[string]model.NetworkMembership
	events       map[string]model.PaymentEvent
	transactions []model.Transaction
	financials   map[string]model.CreatorFinancials
}

func newState() *state {
	return &state{
		creators:    map[string]model.Creator{},
		codes:       map[string]model.ReferralCode{},
		memberships: map[string]model.NetworkMembership{},
		events:      map[string]model.PaymentEvent{},
		financials:  map[string]model.CreatorFinancials{},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.creators {
		c.creators[k] = v
	}
	for k, v := range st.codes {
		c.codes[k] = v
	}
	for k, v := range st.memberships {
		c.memberships[k] = v.Clone()
	}
	for k, v := range st.events {
		c.events[k] = v
	}
	for k, v := range st.financials {
		c.financials[k] = v
	}
	c.transactions = append(make([]model.Transaction, 0, len(st.transactions)), st.transactions...)
	return c
}

// Store godoc
type Store struct {
	mu   *sync.Mutex
	root *Store
	st   *state
	inTx bool
}

var _ queries.Storage = (*Store)(nil)

// New creates an empty store
func New() *Store {
	s := &Store{mu: &sync.Mutex{}, st: newState()}
	s.root = s
	return s
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Transaction(ctx context.Context, fn func(tx queries.Storage) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, root: s.root, st: s.root.st.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.root.st = tx.st
	return nil
}

func (s *Store) UpsertCreator(_ context.Context, creator *model.Creator) error {
	defer s.lock()()
	for id, c := range s.st.creators {
		if id != creator.ID && strings.EqualFold(c.Username, creator.Username) {
			return &queries.ConstraintError{Constraint: "creators_username_key"}
		}
	}
	now := time.Now()
	if existing, ok := s.st.creators[creator.ID]; ok {
		creator.CreatedAt = existing.CreatedAt
	} else if creator.CreatedAt.IsZero() {
		creator.CreatedAt = now
	}
	creator.UpdatedAt = now
	s.st.creators[creator.ID] = *creator
	return nil
}

func (s *Store) GetCreatorByID(_ context.Context, id string) (*model.Creator, error) {
	defer s.lock()()
	c, ok := s.st.creators[id]
	if !ok {
		return nil, queries.ErrRecordNotFound
	}
	return &c, nil
}

func (s *Store) GetCreatorByUsername(_ context.Context, username string) (*model.Creator, error) {
	defer s.lock()()
	for _, c := range s.st.creators {
		if strings.EqualFold(c.Username, username) {
			c := c
			return &c, nil
		}
	}
	return nil, queries.ErrRecordNotFound
}

func (s *Store) GetCreatorsByIDs(_ context.Context, ids []string) (map[string]model.Creator, error) {
	defer s.lock()()
	creators := make(map[string]model.Creator, len(ids))
	for _, id := range ids {
		if c, ok := s.st.creators[id]; ok {
			creators[id] = c
		}
	}
	return creators, nil
}

func (s *Store) GetReferralCode(_ context.Context, code string) (*model.ReferralCode, error) {
	defer s.lock()()
	rc, ok := s.st.codes[code]
	if !ok {
		return nil, queries.ErrRecordNotFound
	}
	return &rc, nil
}

func (s *Store) GetActiveReferralCodeByOwner(_ context.Context, creatorID string) (*model.ReferralCode, error) {
	defer s.lock()()
	for _, rc := range s.st.codes {
		if rc.OwnerCreatorID == creatorID && rc.Active {
			rc := rc
			return &rc, nil
		}
	}
	return nil, queries.ErrRecordNotFound
}

func (s *Store) CreateReferralCode(_ context.Context, rc *model.ReferralCode) error {
	defer s.lock()()
	if _, ok := s.st.codes[rc.Code]; ok {
		return &queries.ConstraintError{Constraint: "referral_codes_pkey"}
	}
	if rc.Active {
		for _, existing := range s.st.codes {
			if existing.OwnerCreatorID == rc.OwnerCreatorID && existing.Active {
				return &queries.ConstraintError{Constraint: "referral_codes_active_owner_idx"}
			}
		}
	}
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = time.Now()
	}
	s.st.codes[rc.Code] = *rc
	return nil
}

func (s *Store) SetReferralCodeActive(_ context.Context, code string, active bool) error {
	defer s.lock()()
	rc, ok := s.st.codes[code]
	if !ok {
		return queries.ErrRecordNotFound
	}
	if active && !rc.Active {
		for _, existing := range s.st.codes {
			if existing.OwnerCreatorID == rc.OwnerCreatorID && existing.Active {
				return &queries.ConstraintError{Constraint: "referral_codes_active_owner_idx"}
			}
		}
	}
	rc.Active = active
	s.st.codes[code] = rc
	return nil
}

func (s *Store) GetMembership(_ context.Context, creatorID string) (*model.NetworkMembership, error) {
	defer s.lock()()
	m, ok := s.st.memberships[creatorID]
	if !ok {
		return nil, queries.ErrRecordNotFound
	}
	m = m.Clone()
	return &m, nil
}

func (s *Store) CreateMembership(_ context.Context, m *model.NetworkMembership) error {
	defer s.lock()()
	if _, ok := s.st.memberships[m.CreatorID]; ok {
		return &queries.ConstraintError{Constraint: "creator_network_pkey"}
	}
	s.st.memberships[m.CreatorID] = m.Clone()
	return nil
}

func (s *Store) GetDirectDownline(_ context.Context, creatorID string) ([]model.NetworkMembership, error) {
	defer s.lock()()
	list := []model.NetworkMembership{}
	for _, m := range s.st.memberships {
		if m.ReferredByID == creatorID {
			list = append(list, m.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].CreatorID < list[j].CreatorID
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list, nil
}

func (s *Store) UpdateMembershipAggregates(_ context.Context, creatorID string, total, monthly, subscribers int64) error {
	defer s.lock()()
	m, ok := s.st.memberships[creatorID]
	if !ok {
		return nil
	}
	m.TotalEarnings = total
	m.MonthlyEarnings = monthly
	m.SubscriberCount = subscribers
	m.UpdatedAt = time.Now()
	s.st.memberships[creatorID] = m
	return nil
}

func (s *Store) UpdateMembershipUpline(_ context.Context, creatorID string, level int, ancestorIDs []string) error {
	defer s.lock()()
	m, ok := s.st.memberships[creatorID]
	if !ok {
		return queries.ErrRecordNotFound
	}
	m.Level = level
	m.AncestorIDs = append(pq.StringArray{}, ancestorIDs...)
	m.UpdatedAt = time.Now()
	s.st.memberships[creatorID] = m
	return nil
}

func (s *Store) GetPaymentEvent(_ context.Context, eventID string) (*model.PaymentEvent, error) {
	defer s.lock()()
	ev, ok := s.st.events[eventID]
	if !ok {
		return nil, queries.ErrRecordNotFound
	}
	return &ev, nil
}

func (s *Store) CreatePaymentEvent(_ context.Context, ev *model.PaymentEvent) error {
	defer s.lock()()
	if _, ok := s.st.events[ev.EventID]; ok {
		return &queries.ConstraintError{Constraint: "payment_events_pkey"}
	}
	s.st.events[ev.EventID] = *ev
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, tx *model.Transaction) error {
	defer s.lock()()
	for _, existing := range s.st.transactions {
		if existing.ID == tx.ID {
			return &queries.ConstraintError{Constraint: "transactions_pkey"}
		}
		if tx.EventID != "" && existing.EventID == tx.EventID &&
			existing.CreatorID == tx.CreatorID && existing.Type == tx.Type {
			return &queries.ConstraintError{Constraint: "transactions_event_idx"}
		}
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	s.st.transactions = append(s.st.transactions, *tx)
	return nil
}

func (s *Store) GetTransactions(_ context.Context, creatorID string, limit int) ([]model.Transaction, error) {
	defer s.lock()()
	list := []model.Transaction{}
	// newest entries are at the end of the log
	for i := len(s.st.transactions) - 1; i >= 0 && len(list) < limit; i-- {
		if s.st.transactions[i].CreatorID == creatorID {
			list = append(list, s.st.transactions[i])
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Store) GetTransactionsByEvent(_ context.Context, eventID string) ([]model.Transaction, error) {
	defer s.lock()()
	list := []model.Transaction{}
	for _, tx := range s.st.transactions {
		if tx.EventID == eventID {
			list = append(list, tx)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Level < list[j].Level
	})
	return list, nil
}

func (s *Store) GetLedgerTotals(_ context.Context, creatorID string, monthStart time.Time) (*model.LedgerTotals, error) {
	defer s.lock()()
	totals := model.LedgerTotals{}
	payers := map[string]struct{}{}
	for _, tx := range s.st.transactions {
		if tx.CreatorID != creatorID || tx.Status != model.TransactionStatus_Completed {
			continue
		}
		thisMonth := !tx.CreatedAt.Before(monthStart)
		switch {
		case tx.Type == model.TransactionType_Subscription:
			totals.Direct += tx.Amount
			if thisMonth {
				totals.Monthly += tx.Amount
				payers[tx.FromUserID] = struct{}{}
			}
		case tx.Type.IsCommission():
			totals.Network += tx.Amount
			if thisMonth {
				totals.Monthly += tx.Amount
			}
		case tx.Type == model.TransactionType_Withdrawal:
			totals.Withdrawals += tx.Amount
		}
	}
	totals.SubscriberCount = int64(len(payers))
	return &totals, nil
}

func (s *Store) GetFinancials(_ context.Context, creatorID string) (*model.CreatorFinancials, error) {
	defer s.lock()()
	f, ok := s.st.financials[creatorID]
	if !ok {
		return nil, queries.ErrRecordNotFound
	}
	return &f, nil
}

// LockFinancials only checks the row exists. Every transaction already holds
// the store mutex.
func (s *Store) LockFinancials(_ context.Context, creatorID string) error {
	defer s.lock()()
	if _, ok := s.st.financials[creatorID]; !ok {
		return queries.ErrRecordNotFound
	}
	return nil
}

func (s *Store) EnsureFinancials(_ context.Context, creatorID string) error {
	defer s.lock()()
	if _, ok := s.st.financials[creatorID]; !ok {
		s.st.financials[creatorID] = model.CreatorFinancials{CreatorID: creatorID, UpdatedAt: time.Now()}
	}
	return nil
}

func (s *Store) IncrementFinancials(_ context.Context, creatorID string, d model.FinancialsDelta) error {
	defer s.lock()()
	f, ok := s.st.financials[creatorID]
	if !ok {
		return queries.ErrRecordNotFound
	}
	f.Apply(d)
	f.UpdatedAt = time.Now()
	s.st.financials[creatorID] = f
	return nil
}

func (s *Store) DebitAvailableBalance(_ context.Context, creatorID string, amount int64) (bool, error) {
	defer s.lock()()
	f, ok := s.st.financials[creatorID]
	if !ok || f.AvailableBalance < amount {
		return false, nil
	}
	f.Apply(model.FinancialsDelta{Available: -amount, Withdrawals: amount})
	f.UpdatedAt = time.Now()
	s.st.financials[creatorID] = f
	return true, nil
}

func (s *Store) SaveFinancials(_ context.Context, f *model.CreatorFinancials) error {
	defer s.lock()()
	f.UpdatedAt = time.Now()
	s.st.financials[f.CreatorID] = *f
	return nil
}

func (s *Store) ListFinancialsCreatorIDs(_ context.Context) ([]string, error) {
	defer s.lock()()
	ids := make([]string, 0, len(s.st.financials))
	for id := range s.st.financials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
