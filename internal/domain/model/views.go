package model

import "time"

// PromoForUser is the feed/detail view of a promo for one end-user.
type PromoForUser struct {
	PromoID           string
	CompanyID         string
	CompanyName       string
	Description       string
	ImageURL          *string
	Active            bool
	IsActivatedByUser bool
	LikeCount         int
	IsLikedByUser     bool
	CommentCount      int
}

// PromoReadOnly is the company-side view of a promo.
type PromoReadOnly struct {
	Promo       *Promo
	CompanyName string
	LikeCount   int
	UsedCount   int
	Active      bool
}

// PromoRow is a promo loaded together with its aggregates. UserID-scoped flags
// are false when the row was loaded without a user.
type PromoRow struct {
	Promo           *Promo
	Stats           PromoStats
	CompanyName     string
	ActivatedByUser bool
	LikedByUser     bool
}

func (r *PromoRow) ForUser(today time.Time) PromoForUser {
	return PromoForUser{
		PromoID:           r.Promo.ID,
		CompanyID:         r.Promo.CompanyID,
		CompanyName:       r.CompanyName,
		Description:       r.Promo.Description,
		ImageURL:          r.Promo.ImageURL,
		Active:            IsActive(r.Promo, r.Stats, today),
		IsActivatedByUser: r.ActivatedByUser,
		LikeCount:         r.Stats.LikeCount,
		IsLikedByUser:     r.LikedByUser,
		CommentCount:      r.Stats.CommentCount,
	}
}

func (r *PromoRow) ReadOnly(today time.Time) PromoReadOnly {
	return PromoReadOnly{
		Promo:       r.Promo,
		CompanyName: r.CompanyName,
		LikeCount:   r.Stats.LikeCount,
		UsedCount:   r.Stats.ActivationCount,
		Active:      IsActive(r.Promo, r.Stats, today),
	}
}
