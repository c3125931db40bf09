package model

import (
	"fmt"
	"time"

	"promo-platform/internal/domain"
)

// TargetPatch updates only the targeting fields that are set.
// Categories, when non-nil, replaces the whole category set.
type TargetPatch struct {
	AgeFrom    *int
	AgeUntil   *int
	Country    *string
	Categories *[]string
}

// Nullable is a patch value that can be absent, explicitly cleared or set.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Nullable holding v.
func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a Nullable that clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// PromoPatch is a partial update issued by the owning company.
// Nil fields and unset Nullables are left untouched; a Null clears the field.
type PromoPatch struct {
	Description *string
	ImageURL    Nullable[string]
	ActiveFrom  Nullable[time.Time]
	ActiveUntil Nullable[time.Time]
	MaxCount    *int
	Mode        *PromoMode
	Target      *TargetPatch
}

// ReplacesCategories reports whether applying the patch rewrites the category set.
func (pp PromoPatch) ReplacesCategories() bool {
	return pp.Target != nil && pp.Target.Categories != nil
}

// Apply merges the patch into a copy of cur and validates the result against the
// same invariants as NewPromo. cur is never modified.
func (pp PromoPatch) Apply(cur *Promo) (*Promo, error) {
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	next := *cur
	next.Target = cur.Target
	next.Target.Categories = append([]string(nil), cur.Target.Categories...)

	if pp.Mode != nil && *pp.Mode != cur.Mode {
		return nil, fmt.Errorf("%w: mode cannot be changed after creation", domain.ErrInvalidArgument)
	}
	if pp.Description != nil {
		next.Description = *pp.Description
	}
	if pp.ImageURL.Set {
		next.ImageURL = nil
		if pp.ImageURL.Value != nil {
			v := *pp.ImageURL.Value
			next.ImageURL = &v
		}
	}
	if pp.ActiveFrom.Set {
		next.ActiveFrom = dateOrNil(pp.ActiveFrom.Value)
	}
	if pp.ActiveUntil.Set {
		next.ActiveUntil = dateOrNil(pp.ActiveUntil.Value)
	}
	if pp.MaxCount != nil {
		next.MaxCount = *pp.MaxCount
	}
	if t := pp.Target; t != nil {
		if t.AgeFrom != nil {
			v := *t.AgeFrom
			next.Target.AgeFrom = &v
		}
		if t.AgeUntil != nil {
			v := *t.AgeUntil
			next.Target.AgeUntil = &v
		}
		if t.Country != nil {
			v := *t.Country
			next.Target.Country = &v
		}
		if t.Categories != nil {
			next.Target.Categories = append([]string{}, (*t.Categories)...)
		}
	}

	if err := next.validate(); err != nil {
		return nil, err
	}
	return &next, nil
}
