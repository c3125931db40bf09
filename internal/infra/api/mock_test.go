//go:build !integration

package api_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockFeedUC struct {
	FeedFunc       func(ctx context.Context, userID string, q usecase.FeedQuery) ([]model.PromoForUser, int, error)
	GetForUserFunc func(ctx context.Context, userID, promoID string) (*model.PromoForUser, error)
}

func (m *mockFeedUC) Feed(ctx context.Context, userID string, q usecase.FeedQuery) ([]model.PromoForUser, int, error) {
	if m.FeedFunc != nil {
		return m.FeedFunc(ctx, userID, q)
	}
	return nil, 0, nil
}

func (m *mockFeedUC) GetForUser(ctx context.Context, userID, promoID string) (*model.PromoForUser, error) {
	if m.GetForUserFunc != nil {
		return m.GetForUserFunc(ctx, userID, promoID)
	}
	return nil, domain.ErrNotFound
}

type mockActivationUC struct {
	ActivateFunc func(ctx context.Context, userID, promoID string) (*model.ActivationResult, error)
}

func (m *mockActivationUC) Activate(ctx context.Context, userID, promoID string) (*model.ActivationResult, error) {
	return m.ActivateFunc(ctx, userID, promoID)
}

type mockPromoUC struct {
	CreateFunc func(ctx context.Context, companyID string, in model.PromoCreate) (*model.Promo, error)
	GetFunc    func(ctx context.Context, companyID, promoID string) (*model.PromoReadOnly, error)
	ListFunc   func(ctx context.Context, companyID string, q usecase.ListQuery) ([]model.PromoReadOnly, int, error)
	UpdateFunc func(ctx context.Context, companyID, promoID string, patch model.PromoPatch) (*model.PromoReadOnly, error)
}

func (m *mockPromoUC) Create(ctx context.Context, companyID string, in model.PromoCreate) (*model.Promo, error) {
	return m.CreateFunc(ctx, companyID, in)
}

func (m *mockPromoUC) Get(ctx context.Context, companyID, promoID string) (*model.PromoReadOnly, error) {
	return m.GetFunc(ctx, companyID, promoID)
}

func (m *mockPromoUC) List(ctx context.Context, companyID string, q usecase.ListQuery) ([]model.PromoReadOnly, int, error) {
	return m.ListFunc(ctx, companyID, q)
}

func (m *mockPromoUC) Update(ctx context.Context, companyID, promoID string, patch model.PromoPatch) (*model.PromoReadOnly, error) {
	return m.UpdateFunc(ctx, companyID, promoID, patch)
}

type mockLikeUC struct {
	mu    sync.Mutex
	calls []string
}

func (m *mockLikeUC) Add(ctx context.Context, userID, promoID string) (*model.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "add:"+promoID)
	return &model.Like{UserID: userID, PromoID: promoID}, nil
}

func (m *mockLikeUC) Delete(ctx context.Context, userID, promoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete:"+promoID)
	return nil
}

type mockAuthUC struct {
	SignUpUserFunc    func(ctx context.Context, u *model.User, password string) (string, error)
	SignUpCompanyFunc func(ctx context.Context, c *model.Company, password string) (string, error)
	SignInFunc        func(ctx context.Context, kind model.PrincipalKind, email, password string) (model.Principal, string, error)
}

func (m *mockAuthUC) SignUpUser(ctx context.Context, u *model.User, password string) (string, error) {
	return m.SignUpUserFunc(ctx, u, password)
}

func (m *mockAuthUC) SignUpCompany(ctx context.Context, c *model.Company, password string) (string, error) {
	return m.SignUpCompanyFunc(ctx, c, password)
}

func (m *mockAuthUC) SignIn(ctx context.Context, kind model.PrincipalKind, email, password string) (model.Principal, string, error) {
	return m.SignInFunc(ctx, kind, email, password)
}

func (m *mockAuthUC) SetPassword(ctx context.Context, p model.Principal, password string) error {
	return nil
}

type mockProfileUC struct {
	GetFunc    func(ctx context.Context, userID string) (*model.User, error)
	UpdateFunc func(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error)
}

func (m *mockProfileUC) Get(ctx context.Context, userID string) (*model.User, error) {
	return m.GetFunc(ctx, userID)
}

func (m *mockProfileUC) Update(ctx context.Context, userID string, patch model.UserPatch) (*model.User, error) {
	return m.UpdateFunc(ctx, userID, patch)
}

type memSessionStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memSessionStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memSessionStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *memSessionStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allowed, m.err
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }
