package api

import (
	"encoding/json"
	"fmt"
	"time"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
)

const dateLayout = "2006-01-02"

// optional tells an absent JSON key apart from an explicit null.
type optional[T any] struct {
	set   bool
	value *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type targetDTO struct {
	AgeFrom    *int     `json:"age_from,omitempty"`
	AgeUntil   *int     `json:"age_until,omitempty"`
	Country    *string  `json:"country,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type promoCreateRequest struct {
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Target      targetDTO `json:"target"`
	MaxCount    int       `json:"max_count"`
	ActiveFrom  *string   `json:"active_from"`
	ActiveUntil *string   `json:"active_until"`
	Mode        string    `json:"mode"`
	PromoCommon *string   `json:"promo_common"`
	PromoUnique []string  `json:"promo_unique"`
}

func (r promoCreateRequest) toModel() (model.PromoCreate, error) {
	from, err := parseDate("active_from", r.ActiveFrom)
	if err != nil {
		return model.PromoCreate{}, err
	}
	until, err := parseDate("active_until", r.ActiveUntil)
	if err != nil {
		return model.PromoCreate{}, err
	}
	return model.PromoCreate{
		Description: r.Description,
		ImageURL:    r.ImageURL,
		ActiveFrom:  from,
		ActiveUntil: until,
		Mode:        model.PromoMode(r.Mode),
		MaxCount:    r.MaxCount,
		PromoCommon: r.PromoCommon,
		PromoUnique: r.PromoUnique,
		Target: model.Target{
			AgeFrom:    r.Target.AgeFrom,
			AgeUntil:   r.Target.AgeUntil,
			Country:    r.Target.Country,
			Categories: r.Target.Categories,
		},
	}, nil
}

type targetPatchDTO struct {
	AgeFrom    *int      `json:"age_from"`
	AgeUntil   *int      `json:"age_until"`
	Country    *string   `json:"country"`
	Categories *[]string `json:"categories"`
}

type promoPatchRequest struct {
	Description *string          `json:"description"`
	ImageURL    optional[string] `json:"image_url"`
	Target      *targetPatchDTO  `json:"target"`
	MaxCount    *int             `json:"max_count"`
	ActiveFrom  optional[string] `json:"active_from"`
	ActiveUntil optional[string] `json:"active_until"`
	Mode        *string          `json:"mode"`
}

func (r promoPatchRequest) toModel() (model.PromoPatch, error) {
	from, err := patchDate("active_from", r.ActiveFrom)
	if err != nil {
		return model.PromoPatch{}, err
	}
	until, err := patchDate("active_until", r.ActiveUntil)
	if err != nil {
		return model.PromoPatch{}, err
	}
	pp := model.PromoPatch{
		Description: r.Description,
		ImageURL:    model.Nullable[string]{Set: r.ImageURL.set, Value: r.ImageURL.value},
		ActiveFrom:  from,
		ActiveUntil: until,
		MaxCount:    r.MaxCount,
	}
	if r.Mode != nil {
		m := model.PromoMode(*r.Mode)
		pp.Mode = &m
	}
	if t := r.Target; t != nil {
		pp.Target = &model.TargetPatch{
			AgeFrom:    t.AgeFrom,
			AgeUntil:   t.AgeUntil,
			Country:    t.Country,
			Categories: t.Categories,
		}
	}
	return pp, nil
}

func patchDate(field string, o optional[string]) (model.Nullable[time.Time], error) {
	if !o.set {
		return model.Nullable[time.Time]{}, nil
	}
	t, err := parseDate(field, o.value)
	if err != nil {
		return model.Nullable[time.Time]{}, err
	}
	return model.Nullable[time.Time]{Set: true, Value: t}, nil
}

type promoReadOnlyDTO struct {
	PromoID     string    `json:"promo_id"`
	CompanyID   string    `json:"company_id"`
	CompanyName string    `json:"company_name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Target      targetDTO `json:"target"`
	MaxCount    int       `json:"max_count"`
	ActiveFrom  *string   `json:"active_from,omitempty"`
	ActiveUntil *string   `json:"active_until,omitempty"`
	Mode        string    `json:"mode"`
	PromoCommon *string   `json:"promo_common,omitempty"`
	PromoUnique []string  `json:"promo_unique,omitempty"`
	LikeCount   int       `json:"like_count"`
	UsedCount   int       `json:"used_count"`
	Active      bool      `json:"active"`
}

func toReadOnlyDTO(v model.PromoReadOnly) promoReadOnlyDTO {
	p := v.Promo
	return promoReadOnlyDTO{
		PromoID:     p.ID,
		CompanyID:   p.CompanyID,
		CompanyName: v.CompanyName,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Target: targetDTO{
			AgeFrom:    p.Target.AgeFrom,
			AgeUntil:   p.Target.AgeUntil,
			Country:    p.Target.Country,
			Categories: p.Target.Categories,
		},
		MaxCount:    p.MaxCount,
		ActiveFrom:  formatDate(p.ActiveFrom),
		ActiveUntil: formatDate(p.ActiveUntil),
		Mode:        string(p.Mode),
		PromoCommon: p.PromoCommon,
		PromoUnique: p.UniqueValues(),
		LikeCount:   v.LikeCount,
		UsedCount:   v.UsedCount,
		Active:      v.Active,
	}
}

type promoForUserDTO struct {
	PromoID           string  `json:"promo_id"`
	CompanyID         string  `json:"company_id"`
	CompanyName       string  `json:"company_name"`
	Description       string  `json:"description"`
	ImageURL          *string `json:"image_url,omitempty"`
	Active            bool    `json:"active"`
	IsActivatedByUser bool    `json:"is_activated_by_user"`
	LikeCount         int     `json:"like_count"`
	IsLikedByUser     bool    `json:"is_liked_by_user"`
	CommentCount      int     `json:"comment_count"`
}

func toForUserDTO(v model.PromoForUser) promoForUserDTO {
	return promoForUserDTO{
		PromoID:           v.PromoID,
		CompanyID:         v.CompanyID,
		CompanyName:       v.CompanyName,
		Description:       v.Description,
		ImageURL:          v.ImageURL,
		Active:            v.Active,
		IsActivatedByUser: v.IsActivatedByUser,
		LikeCount:         v.LikeCount,
		IsLikedByUser:     v.IsLikedByUser,
		CommentCount:      v.CommentCount,
	}
}

type activationDTO struct {
	PromoID     string  `json:"promo_id"`
	Description string  `json:"description"`
	Promo       *string `json:"promo"`
}

func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrInvalidArgument, field)
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
