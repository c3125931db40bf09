//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/adapter"
	"promo-platform/internal/domain/ports/repository"
)

// -----------------------------
// In-memory store shared by the repo mocks
// -----------------------------

type activationKey struct{ userID, promoID string }

type memStore struct {
	mu          sync.Mutex
	promos      map[string]*model.Promo
	activations map[activationKey]*model.Activation
	likes       map[activationKey]*model.Like
	comments    map[string]int
	companies   map[string]*model.Company
}

func newMemStore() *memStore {
	return &memStore{
		promos:      make(map[string]*model.Promo),
		activations: make(map[activationKey]*model.Activation),
		likes:       make(map[activationKey]*model.Like),
		comments:    make(map[string]int),
		companies:   make(map[string]*model.Company),
	}
}

// stats must be called with mu held.
func (s *memStore) stats(promoID string) model.PromoStats {
	st := model.PromoStats{CommentCount: s.comments[promoID]}
	if p, ok := s.promos[promoID]; ok {
		st.UniqueCount = len(p.PromoUnique)
	}
	for k := range s.activations {
		if k.promoID == promoID {
			st.ActivationCount++
		}
	}
	for k := range s.likes {
		if k.promoID == promoID {
			st.LikeCount++
		}
	}
	return st
}

// row must be called with mu held.
func (s *memStore) row(p *model.Promo, scope repository.RowScope) *model.PromoRow {
	cp := *p
	if !scope.WithPool {
		cp.PromoUnique = nil
	}
	r := &model.PromoRow{Promo: &cp, Stats: s.stats(p.ID)}
	if c, ok := s.companies[p.CompanyID]; ok {
		r.CompanyName = c.Name
	}
	if scope.UserID != "" {
		_, r.ActivatedByUser = s.activations[activationKey{scope.UserID, p.ID}]
		_, r.LikedByUser = s.likes[activationKey{scope.UserID, p.ID}]
	}
	return r
}

// newestFirst must be called with mu held.
func (s *memStore) newestFirst() []*model.Promo {
	out := make([]*model.Promo, 0, len(s.promos))
	for _, p := range s.promos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo(users ...*model.User) *MockUserRepo {
	m := &MockUserRepo{byID: make(map[string]*model.User)}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.byID {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return domain.ErrAlreadyExists
		}
	}
	m.byID[u.ID] = u
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock CompanyRepository ----

type MockCompanyRepo struct{ db *memStore }

var _ repository.CompanyRepository = (*MockCompanyRepo)(nil)

func (m *MockCompanyRepo) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, other := range m.db.companies {
		if id != c.ID && strings.EqualFold(other.Email, c.Email) {
			return domain.ErrAlreadyExists
		}
	}
	m.db.companies[c.ID] = c
	return nil
}

// ---- Mock CredentialRepository ----

type MockCredentialRepo struct {
	mu     sync.Mutex
	users  *MockUserRepo
	db     *memStore
	hashes map[model.Principal]string
}

var _ repository.CredentialRepository = (*MockCredentialRepo)(nil)

func (m *MockCredentialRepo) FindByEmail(ctx context.Context, tx repository.Tx, kind model.PrincipalKind, email string) (*model.Credential, error) {
	p := model.Principal{Kind: kind}
	switch kind {
	case model.PrincipalUser:
		u, err := m.users.FindByEmail(ctx, tx, email)
		if err != nil {
			return nil, err
		}
		p.ID = u.ID
	case model.PrincipalCompany:
		m.db.mu.Lock()
		for id, c := range m.db.companies {
			if strings.EqualFold(c.Email, email) {
				p.ID = id
			}
		}
		m.db.mu.Unlock()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	hash, ok := m.hashes[p]
	if p.ID == "" || !ok {
		return nil, domain.ErrNotFound
	}
	return &model.Credential{Principal: p, Hash: hash}, nil
}

func (m *MockCredentialRepo) SetHash(ctx context.Context, tx repository.Tx, p model.Principal, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[p] = hash
	return nil
}

func (m *MockCompanyRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Company, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if c, ok := m.db.companies[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock PromoRepository ----

// MockPromoRepo keeps promos in memory. ListFeed only applies the category
// filter, so targeting is left entirely to the caller.
type MockPromoRepo struct {
	db *memStore

	LockByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Promo, error)
	ListFeedFunc func(ctx context.Context, tx repository.Tx, f repository.FeedFilter) ([]*model.PromoRow, error)
}

var _ repository.PromoRepository = (*MockPromoRepo)(nil)

func (m *MockPromoRepo) Create(ctx context.Context, tx repository.Tx, p *model.Promo) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.promos[p.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *p
	m.db.promos[p.ID] = &cp
	return nil
}

func (m *MockPromoRepo) Update(ctx context.Context, tx repository.Tx, p *model.Promo) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.promos[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := *p
	next.Target.Categories = cur.Target.Categories
	next.PromoUnique = cur.PromoUnique
	m.db.promos[p.ID] = &next
	return nil
}

func (m *MockPromoRepo) ReplaceCategories(ctx context.Context, tx repository.Tx, promoID string, categories []string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.promos[promoID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Target.Categories = append([]string(nil), categories...)
	return nil
}

func (m *MockPromoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Promo, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.promos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPromoRepo) LockByID(ctx context.Context, tx repository.Tx, id string) (*model.Promo, error) {
	if m.LockByIDFunc != nil {
		return m.LockByIDFunc(ctx, tx, id)
	}
	return m.FindByID(ctx, tx, id)
}

func (m *MockPromoRepo) Stats(ctx context.Context, tx repository.Tx, promoID string) (model.PromoStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.db.stats(promoID), nil
}

func (m *MockPromoRepo) FindRow(ctx context.Context, tx repository.Tx, id string, scope repository.RowScope) (*model.PromoRow, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.promos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.db.row(p, scope), nil
}

func (m *MockPromoRepo) ListFeed(ctx context.Context, tx repository.Tx, f repository.FeedFilter) ([]*model.PromoRow, error) {
	if m.ListFeedFunc != nil {
		return m.ListFeedFunc(ctx, tx, f)
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.PromoRow
	for _, p := range m.db.newestFirst() {
		if f.Category != "" && !p.Target.HasCategory(f.Category) {
			continue
		}
		out = append(out, m.db.row(p, repository.RowScope{UserID: f.UserID}))
	}
	return out, nil
}

func (m *MockPromoRepo) ListByCompany(ctx context.Context, tx repository.Tx, companyID string, q repository.CompanyListQuery) ([]*model.PromoRow, int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var all []*model.PromoRow
	for _, p := range m.db.newestFirst() {
		if p.CompanyID != companyID {
			continue
		}
		if len(q.Countries) > 0 && p.Target.Country != nil {
			match := false
			for _, c := range q.Countries {
				match = match || strings.EqualFold(c, *p.Target.Country)
			}
			if !match {
				continue
			}
		}
		all = append(all, m.db.row(p, repository.RowScope{WithPool: true}))
	}
	total := len(all)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return all[q.Offset:end], total, nil
}

// ---- Mock ActivationRepository ----

type MockActivationRepo struct {
	db *memStore

	CreateFunc func(ctx context.Context, tx repository.Tx, a *model.Activation) error
}

var _ repository.ActivationRepository = (*MockActivationRepo)(nil)

func (m *MockActivationRepo) Create(ctx context.Context, tx repository.Tx, a *model.Activation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, a)
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	k := activationKey{a.UserID, a.PromoID}
	if _, ok := m.db.activations[k]; ok {
		return domain.ErrAlreadyExists
	}
	if a.UniqueCodeID != nil {
		for _, other := range m.db.activations {
			if other.UniqueCodeID != nil && *other.UniqueCodeID == *a.UniqueCodeID {
				return domain.ErrAlreadyExists
			}
		}
	}
	cp := *a
	m.db.activations[k] = &cp
	return nil
}

func (m *MockActivationRepo) Exists(ctx context.Context, tx repository.Tx, userID, promoID string) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	_, ok := m.db.activations[activationKey{userID, promoID}]
	return ok, nil
}

func (m *MockActivationRepo) NextUniqueCode(ctx context.Context, tx repository.Tx, promoID string) (*model.UniqueCode, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.promos[promoID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	used := make(map[string]bool)
	for _, a := range m.db.activations {
		if a.UniqueCodeID != nil {
			used[*a.UniqueCodeID] = true
		}
	}
	for _, c := range p.PromoUnique {
		if !used[c.ID] {
			cp := c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock LikeRepository ----

type MockLikeRepo struct{ db *memStore }

var _ repository.LikeRepository = (*MockLikeRepo)(nil)

func (m *MockLikeRepo) Create(ctx context.Context, tx repository.Tx, l *model.Like) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	k := activationKey{l.UserID, l.PromoID}
	if _, ok := m.db.likes[k]; !ok {
		cp := *l
		m.db.likes[k] = &cp
	}
	return nil
}

func (m *MockLikeRepo) Delete(ctx context.Context, tx repository.Tx, userID, promoID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.likes, activationKey{userID, promoID})
	return nil
}

func (m *MockLikeRepo) Find(ctx context.Context, tx repository.Tx, userID, promoID string) (*model.Like, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	l, ok := m.db.likes[activationKey{userID, promoID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

// ---- Mock SessionStore ----

type MockSessionStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	Dels []string

	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

var _ repository.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *MockSessionStore) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *MockSessionStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *MockSessionStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttls, k)
		m.Dels = append(m.Dels, k)
	}
	return nil
}

// =============================
// Adapters
// =============================

// MockSigner encodes the principal into the token so Parse can reverse it.
type MockSigner struct {
	mu  sync.Mutex
	seq int
}

var _ adapter.TokenSigner = (*MockSigner)(nil)

func (m *MockSigner) Sign(p model.Principal, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return strings.Join([]string{string(p.Kind), p.ID, strconv.Itoa(m.seq)}, "|"), nil
}

func (m *MockSigner) Parse(token string) (model.Principal, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return model.Principal{}, domain.ErrUnauthorized
	}
	return model.Principal{Kind: model.PrincipalKind(parts[0]), ID: parts[1]}, nil
}

// MockHasher prefixes instead of hashing so tests can read stored values.
type MockHasher struct{}

var _ adapter.PasswordHasher = MockHasher{}

func (MockHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (MockHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrUnauthorized
	}
	return nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	// Serial runs transactions one at a time, standing in for the promo row lock.
	Serial bool
	mu     sync.Mutex

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	if m.Serial {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Fixtures
// =============================

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

type fixture struct {
	db          *memStore
	users       *MockUserRepo
	companies   *MockCompanyRepo
	promos      *MockPromoRepo
	activations *MockActivationRepo
	likes       *MockLikeRepo
	creds       *MockCredentialRepo
	tm          *MockTxManager
}

func newFixture() *fixture {
	db := newMemStore()
	users := NewMockUserRepo()
	return &fixture{
		db:          db,
		users:       users,
		companies:   &MockCompanyRepo{db: db},
		promos:      &MockPromoRepo{db: db},
		activations: &MockActivationRepo{db: db},
		likes:       &MockLikeRepo{db: db},
		creds:       &MockCredentialRepo{users: users, db: db, hashes: make(map[model.Principal]string)},
		tm:          NewMockTxManager(),
	}
}

func (f *fixture) addUser(id string, age int, country string) *model.User {
	u := &model.User{ID: id, Name: "Test", Surname: "User", Email: id + "@example.com", Age: age, Country: country}
	f.users.byID[id] = u
	return u
}

func (f *fixture) addCompany(id, name string) *model.Company {
	c := &model.Company{ID: id, Name: name, Email: id + "@example.com"}
	f.db.companies[id] = c
	return c
}

// addPromo stores p as-is, filling in the pool ids of UNIQUE promos.
func (f *fixture) addPromo(p *model.Promo) *model.Promo {
	for i := range p.PromoUnique {
		if p.PromoUnique[i].ID == "" {
			p.PromoUnique[i].ID = p.ID + "-code-" + p.PromoUnique[i].Value
		}
		p.PromoUnique[i].PromoID = p.ID
	}
	f.db.promos[p.ID] = p
	return p
}

func (f *fixture) activationCount(promoID string) int {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.stats(promoID).ActivationCount
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
