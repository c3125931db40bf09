package model

import (
	"strings"
	"time"
)

// PromoStats are the aggregates the eligibility rules and read views depend on.
type PromoStats struct {
	ActivationCount int
	UniqueCount     int
	LikeCount       int
	CommentCount    int
}

// IsActive reports whether the promo can currently be redeemed by anyone.
//
// The unique-code pool is the capacity of a UNIQUE promo; its MaxCount is fixed at 1
// and is not consulted. Unknown modes are treated as active.
func IsActive(p *Promo, stats PromoStats, today time.Time) bool {
	today = DateOf(today)
	if p.ActiveFrom != nil && today.Before(DateOf(*p.ActiveFrom)) {
		return false
	}
	if p.ActiveUntil != nil && today.After(DateOf(*p.ActiveUntil)) {
		return false
	}
	switch p.Mode {
	case PromoModeCommon:
		return stats.ActivationCount < p.MaxCount
	case PromoModeUnique:
		return stats.ActivationCount < stats.UniqueCount
	default:
		return true
	}
}

// MatchesUser reports whether the user's age and country satisfy the rule.
// Categories are a feed filter and are not checked here.
func MatchesUser(t Target, u *User) bool {
	if u == nil {
		return false
	}
	if t.AgeFrom != nil && u.Age < *t.AgeFrom {
		return false
	}
	if t.AgeUntil != nil && u.Age > *t.AgeUntil {
		return false
	}
	if t.Country != nil && !strings.EqualFold(*t.Country, u.Country) {
		return false
	}
	return true
}

// HasCategory reports whether any of the promo's categories equals name, ignoring case.
func (t Target) HasCategory(name string) bool {
	for _, c := range t.Categories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
