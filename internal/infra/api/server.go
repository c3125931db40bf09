package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"promo-platform/internal/config"
	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/infra/metrics"
	"promo-platform/internal/infra/redis"
	"promo-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const defaultPageSize = 10

// Limiter counts hits per key inside a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Feed       usecase.FeedUseCase
	Activation usecase.ActivationUseCase
	Promos     usecase.PromoUseCase
	Likes      usecase.LikeUseCase
	Sessions   usecase.SessionUseCase
	Auth       usecase.AuthUseCase
	Profile    usecase.ProfileUseCase
	Limiter    Limiter
	Health     []Pinger
}

// Server exposes the promo use cases over JSON/HTTP.
type Server struct {
	deps       Deps
	rateLimit  config.RateLimitConfig
	reqTimeout time.Duration
	log        *zerolog.Logger
}

func NewServer(deps Deps, httpCfg config.HTTPConfig, rl config.RateLimitConfig, logger *zerolog.Logger) *Server {
	return &Server{deps: deps, rateLimit: rl, reqTimeout: httpCfg.RequestTimeout, log: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Get("/health", s.health)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Timeout(s.reqTimeout))

		r.Route("/api/user", func(r chi.Router) {
			r.Post("/auth/sign-up", s.userSignUp)
			r.Post("/auth/sign-in", s.signIn(model.PrincipalUser))

			r.Group(func(r chi.Router) {
				r.Use(Auth(s.deps.Sessions, model.PrincipalUser, s.log))
				r.Get("/profile", s.getProfile)
				r.Patch("/profile", s.updateProfile)
				r.Get("/feed", s.feed)
				r.Get("/promo/{id}", s.getForUser)
				r.Post("/promo/{id}/activate", s.activate)
				r.Post("/promo/{id}/like", s.addLike)
				r.Delete("/promo/{id}/like", s.deleteLike)
			})
		})

		r.Route("/api/business", func(r chi.Router) {
			r.Post("/auth/sign-up", s.companySignUp)
			r.Post("/auth/sign-in", s.signIn(model.PrincipalCompany))

			r.Group(func(r chi.Router) {
				r.Use(Auth(s.deps.Sessions, model.PrincipalCompany, s.log))
				r.Post("/promo", s.createPromo)
				r.Get("/promo", s.listPromos)
				r.Get("/promo/{id}", s.getPromo)
				r.Patch("/promo/{id}", s.updatePromo)
			})
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, p := range s.deps.Health {
		if err := p.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Status: "error", Message: "dependency unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- end-user routes -----

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := paging(q.Get("limit"), q.Get("offset"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	fq := usecase.FeedQuery{Category: q.Get("category"), Limit: limit, Offset: offset}
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, s.log, badRequest("active must be true or false"))
			return
		}
		fq.Active = &active
	}

	items, total, err := s.deps.Feed.Feed(r.Context(), principalFrom(r.Context()).ID, fq)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out := make([]promoForUserDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toForUserDTO(it))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getForUser(w http.ResponseWriter, r *http.Request) {
	id, err := promoID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	item, err := s.deps.Feed.GetForUser(r.Context(), principalFrom(r.Context()).ID, id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toForUserDTO(*item))
}

func (s *Server) activate(w http.ResponseWriter, r *http.Request) {
	id, err := promoID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	userID := principalFrom(r.Context()).ID

	if s.deps.Limiter != nil && s.rateLimit.Activations > 0 {
		ok, err := s.deps.Limiter.Allow(r.Context(), redis.ActivationKey(userID), s.rateLimit.Activations, s.rateLimit.Window)
		switch {
		case err != nil:
			// fail open: the activation itself is still guarded by the store
			s.log.Warn().Err(err).Msg("rate limiter unavailable")
		case !ok:
			writeError(w, r, s.log, domain.ErrRateLimited)
			return
		}
	}

	res, err := s.deps.Activation.Activate(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, activationDTO{PromoID: res.PromoID, Description: res.Description, Promo: res.Code})
}

func (s *Server) addLike(w http.ResponseWriter, r *http.Request) {
	s.toggleLike(w, r, func(ctx context.Context, userID, promoID string) error {
		_, err := s.deps.Likes.Add(ctx, userID, promoID)
		return err
	})
}

func (s *Server) deleteLike(w http.ResponseWriter, r *http.Request) {
	s.toggleLike(w, r, s.deps.Likes.Delete)
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, promoID string) error) {
	id, err := promoID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := op(r.Context(), principalFrom(r.Context()).ID, id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- company routes -----

func (s *Server) createPromo(w http.ResponseWriter, r *http.Request) {
	var req promoCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	in, err := req.toModel()
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	p, err := s.deps.Promos.Create(r.Context(), principalFrom(r.Context()).ID, in)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": p.ID})
}

func (s *Server) listPromos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, err := paging(q.Get("limit"), q.Get("offset"))
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var countries []string
	for _, v := range q["country"] {
		countries = append(countries, strings.Split(v, ",")...)
	}

	items, total, err := s.deps.Promos.List(r.Context(), principalFrom(r.Context()).ID, usecase.ListQuery{
		Limit:     limit,
		Offset:    offset,
		SortBy:    repository.SortField(q.Get("sort_by")),
		Countries: countries,
	})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out := make([]promoReadOnlyDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toReadOnlyDTO(it))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPromo(w http.ResponseWriter, r *http.Request) {
	id, err := promoID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	v, err := s.deps.Promos.Get(r.Context(), principalFrom(r.Context()).ID, id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReadOnlyDTO(*v))
}

func (s *Server) updatePromo(w http.ResponseWriter, r *http.Request) {
	id, err := promoID(r)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req promoPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	patch, err := req.toModel()
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	v, err := s.deps.Promos.Update(r.Context(), principalFrom(r.Context()).ID, id, patch)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toReadOnlyDTO(*v))
}
