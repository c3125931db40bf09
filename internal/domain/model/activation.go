package model

import "time"

// Activation records that a user redeemed a promo. There is at most one per
// (UserID, PromoID) and rows are never updated.
type Activation struct {
	UserID       string
	PromoID      string
	UniqueCodeID *string
	CreatedAt    time.Time
}

// ActivationResult is returned to the user after a successful redemption.
// Code is the shared promo_common value or the unique code handed out.
type ActivationResult struct {
	PromoID     string
	Description string
	Code        *string
}

// Like is a user's mark on a promo; at most one per (UserID, PromoID).
type Like struct {
	UserID    string
	PromoID   string
	CreatedAt time.Time
}

// Comment is only counted by the promo views.
type Comment struct {
	ID        string
	PromoID   string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}
