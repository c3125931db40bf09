package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"promo-platform/internal/domain"

	"github.com/google/uuid"
)

type PromoMode string

const (
	PromoModeCommon PromoMode = "COMMON"
	PromoModeUnique PromoMode = "UNIQUE"
)

func (m PromoMode) Valid() bool { return m == PromoModeCommon || m == PromoModeUnique }

const (
	MinAge = 0
	MaxAge = 100

	maxPromoCount     = 100_000_000
	maxUniquePoolSize = 5000
	maxCodeLength     = 30
	maxImageURLLength = 350
)

// Target restricts which users may see and redeem a promo.
// Nil fields mean "no restriction" on that axis.
type Target struct {
	AgeFrom    *int
	AgeUntil   *int
	Country    *string
	Categories []string
}

// Validate checks the rule and normalizes the country code and category labels in place.
func (t *Target) Validate() error {
	if t.AgeFrom != nil && (*t.AgeFrom < MinAge || *t.AgeFrom > MaxAge) {
		return fmt.Errorf("%w: age_from out of range", domain.ErrInvalidArgument)
	}
	if t.AgeUntil != nil && (*t.AgeUntil < MinAge || *t.AgeUntil > MaxAge) {
		return fmt.Errorf("%w: age_until out of range", domain.ErrInvalidArgument)
	}
	if t.AgeFrom != nil && t.AgeUntil != nil && *t.AgeFrom > *t.AgeUntil {
		return fmt.Errorf("%w: age_from must be less than or equal to age_until", domain.ErrInvalidArgument)
	}
	if t.Country != nil {
		cc, err := NormalizeCountry(*t.Country)
		if err != nil {
			return err
		}
		t.Country = &cc
	}
	if len(t.Categories) > 0 {
		cats := make([]string, len(t.Categories))
		for i, c := range t.Categories {
			c = strings.TrimSpace(c)
			if l := len([]rune(c)); l < 2 || l > 20 {
				return fmt.Errorf("%w: category %q must be 2..20 characters", domain.ErrInvalidArgument, c)
			}
			cats[i] = c
		}
		t.Categories = cats
	}
	return nil
}

// UniqueCode is one single-use slot in a UNIQUE promo's pool.
type UniqueCode struct {
	ID      string
	PromoID string
	Value   string
}

// Promo is the aggregate root for a published promo code.
// ActiveFrom and ActiveUntil are calendar dates (UTC midnight).
type Promo struct {
	ID          string
	CompanyID   string
	Description string
	ImageURL    *string
	ActiveFrom  *time.Time
	ActiveUntil *time.Time
	Mode        PromoMode
	MaxCount    int
	PromoCommon *string
	PromoUnique []UniqueCode
	Target      Target
	CreatedAt   time.Time
}

func (p *Promo) IsZero() bool { return p == nil || p.ID == "" }

// UniqueValues returns the pool values in stored order.
func (p *Promo) UniqueValues() []string {
	if len(p.PromoUnique) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.PromoUnique))
	for _, u := range p.PromoUnique {
		out = append(out, u.Value)
	}
	return out
}

// PromoCreate carries the input of a promo registration.
type PromoCreate struct {
	Description string
	ImageURL    *string
	ActiveFrom  *time.Time
	ActiveUntil *time.Time
	Mode        PromoMode
	MaxCount    int
	PromoCommon *string
	PromoUnique []string
	Target      Target
}

// NewPromo validates the input and builds a promo together with its unique pool.
func NewPromo(companyID string, in PromoCreate) (*Promo, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", domain.ErrInvalidArgument)
	}
	p := &Promo{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		ActiveFrom:  dateOrNil(in.ActiveFrom),
		ActiveUntil: dateOrNil(in.ActiveUntil),
		Mode:        in.Mode,
		MaxCount:    in.MaxCount,
		PromoCommon: in.PromoCommon,
		Target:      in.Target,
		CreatedAt:   time.Now(),
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	switch p.Mode {
	case PromoModeUnique:
		if p.PromoCommon != nil {
			return nil, fmt.Errorf("%w: promo_common is not allowed in UNIQUE mode", domain.ErrInvalidArgument)
		}
		if len(in.PromoUnique) == 0 || len(in.PromoUnique) > maxUniquePoolSize {
			return nil, fmt.Errorf("%w: promo_unique must hold 1..%d codes", domain.ErrInvalidArgument, maxUniquePoolSize)
		}
		seen := make(map[string]struct{}, len(in.PromoUnique))
		for _, v := range in.PromoUnique {
			if err := validateCode(v, "promo_unique"); err != nil {
				return nil, err
			}
			if _, dup := seen[v]; dup {
				return nil, fmt.Errorf("%w: duplicate code %q in promo_unique", domain.ErrInvalidArgument, v)
			}
			seen[v] = struct{}{}
			p.PromoUnique = append(p.PromoUnique, UniqueCode{ID: uuid.NewString(), PromoID: p.ID, Value: v})
		}
	case PromoModeCommon:
		if len(in.PromoUnique) > 0 {
			return nil, fmt.Errorf("%w: promo_unique is not allowed in COMMON mode", domain.ErrInvalidArgument)
		}
		if p.PromoCommon == nil {
			return nil, fmt.Errorf("%w: promo_common is required in COMMON mode", domain.ErrInvalidArgument)
		}
		if err := validateCode(*p.PromoCommon, "promo_common"); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// validate checks the invariants shared by creation and patching.
func (p *Promo) validate() error {
	if l := len([]rune(p.Description)); l < 10 || l > 300 {
		return fmt.Errorf("%w: description must be 10..300 characters", domain.ErrInvalidArgument)
	}
	if p.ImageURL != nil {
		if err := validateURL("image_url", *p.ImageURL); err != nil {
			return err
		}
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidArgument, p.Mode)
	}
	if p.MaxCount < 0 || p.MaxCount > maxPromoCount {
		return fmt.Errorf("%w: max_count out of range", domain.ErrInvalidArgument)
	}
	if p.Mode == PromoModeUnique && p.MaxCount != 1 {
		return fmt.Errorf("%w: max_count must be 1 in UNIQUE mode", domain.ErrInvalidArgument)
	}
	if p.ActiveFrom != nil && p.ActiveUntil != nil && p.ActiveFrom.After(*p.ActiveUntil) {
		return fmt.Errorf("%w: active_from must not be after active_until", domain.ErrInvalidArgument)
	}
	return p.Target.Validate()
}

func validateURL(field, raw string) error {
	if raw == "" || len(raw) > maxImageURLLength {
		return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, field)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s must be an absolute URL", domain.ErrInvalidArgument, field)
	}
	return nil
}

func validateCode(v, field string) error {
	if l := len([]rune(v)); l < 1 || l > maxCodeLength {
		return fmt.Errorf("%w: %s values must be 1..%d characters", domain.ErrInvalidArgument, field, maxCodeLength)
	}
	return nil
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

// DateOf drops the clock part of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
