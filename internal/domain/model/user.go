package model

import (
	"fmt"
	"strings"
	"time"

	"promo-platform/internal/domain"

	"github.com/google/uuid"
)

// User is an end-user who browses, likes and activates promos.
// Age and Country are the only fields the targeting rules look at.
type User struct {
	ID        string
	Name      string
	Surname   string
	Email     string
	AvatarURL *string
	Age       int
	Country   string
	CreatedAt time.Time
}

func NewUser(id, name, surname, email string, age int, country string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if age < MinAge || age > MaxAge {
		return nil, fmt.Errorf("%w: age must be within [%d, %d]", domain.ErrInvalidArgument, MinAge, MaxAge)
	}
	cc, err := NormalizeCountry(country)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:        id,
		Name:      name,
		Surname:   surname,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Age:       age,
		Country:   cc,
		CreatedAt: time.Now(),
	}
	if err := u.validateProfile(); err != nil {
		return nil, err
	}
	return u, nil
}

// validateProfile checks the fields a user may edit on their profile.
func (u *User) validateProfile() error {
	if l := len([]rune(u.Name)); l < 1 || l > 100 {
		return fmt.Errorf("%w: name must be 1..100 characters", domain.ErrInvalidArgument)
	}
	if l := len([]rune(u.Surname)); l < 1 || l > 120 {
		return fmt.Errorf("%w: surname must be 1..120 characters", domain.ErrInvalidArgument)
	}
	if !strings.Contains(u.Email, "@") || len(u.Email) > 120 {
		return fmt.Errorf("%w: email", domain.ErrInvalidArgument)
	}
	if u.AvatarURL != nil {
		if err := validateURL("avatar_url", *u.AvatarURL); err != nil {
			return err
		}
	}
	return nil
}

// UserPatch is a profile edit. Age and country are targeting inputs and are
// not editable here.
type UserPatch struct {
	Name      *string
	Surname   *string
	Email     *string
	AvatarURL Nullable[string]
	// Password replaces the stored credential. Apply ignores it.
	Password *string
}

// Apply merges the patch into a copy of cur and validates the result.
func (up UserPatch) Apply(cur *User) (*User, error) {
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	next := *cur
	if up.Name != nil {
		next.Name = *up.Name
	}
	if up.Surname != nil {
		next.Surname = *up.Surname
	}
	if up.Email != nil {
		next.Email = strings.ToLower(strings.TrimSpace(*up.Email))
	}
	if up.AvatarURL.Set {
		next.AvatarURL = nil
		if up.AvatarURL.Value != nil {
			v := *up.AvatarURL.Value
			next.AvatarURL = &v
		}
	}
	if err := next.validateProfile(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// Company publishes promos.
type Company struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

func NewCompany(id, name, email string) (*Company, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if l := len([]rune(name)); l < 5 || l > 50 {
		return nil, fmt.Errorf("%w: company name must be 5..50 characters", domain.ErrInvalidArgument)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", domain.ErrInvalidArgument)
	}
	return &Company{ID: id, Name: name, Email: email, CreatedAt: time.Now()}, nil
}

func (c *Company) IsZero() bool { return c == nil || c.ID == "" }

// NormalizeCountry validates a two-letter country code and returns it upper-cased.
func NormalizeCountry(country string) (string, error) {
	cc := strings.ToUpper(strings.TrimSpace(country))
	if len(cc) != 2 || cc[0] < 'A' || cc[0] > 'Z' || cc[1] < 'A' || cc[1] > 'Z' {
		return "", fmt.Errorf("%w: country must be a two-letter code, got %q", domain.ErrInvalidArgument, country)
	}
	return cc, nil
}
