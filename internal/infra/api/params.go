package api

import (
	"fmt"
	"net/http"
	"strconv"

	"promo-platform/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, msg)
}

// promoID reads the {id} path parameter; it must be a UUID.
func promoID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", badRequest("promo id must be a UUID")
	}
	return id.String(), nil
}

func paging(rawLimit, rawOffset string) (limit, offset int, err error) {
	limit = defaultPageSize
	if rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil {
			return 0, 0, badRequest("limit must be an integer")
		}
	}
	if rawOffset != "" {
		if offset, err = strconv.Atoi(rawOffset); err != nil {
			return 0, 0, badRequest("offset must be an integer")
		}
	}
	return limit, offset, nil
}
