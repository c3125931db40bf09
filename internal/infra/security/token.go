package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/adapter"
)

var _ adapter.TokenSigner = (*JWTSigner)(nil)

type PrincipalClaims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTSigner issues HS256 tokens whose subject is the principal ID and whose
// "kind" claim is the principal kind. Every token carries a random jti so two
// tokens minted in the same second still differ.
type JWTSigner struct {
	secret []byte
	now    func() time.Time
}

func NewJWTSigner(secret string) *JWTSigner {
	return &JWTSigner{secret: []byte(secret), now: time.Now}
}

func (s *JWTSigner) Sign(p model.Principal, ttl time.Duration) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("%w: principal %q", domain.ErrInvalidArgument, p.String())
	}
	now := s.now()
	claims := PrincipalClaims{
		Kind: string(p.Kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   p.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the signature and expiry. Any failure is domain.ErrUnauthorized.
func (s *JWTSigner) Parse(token string) (model.Principal, error) {
	claims := &PrincipalClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !tkn.Valid {
		return model.Principal{}, domain.ErrUnauthorized
	}
	p := model.Principal{Kind: model.PrincipalKind(claims.Kind), ID: claims.Subject}
	if !p.Valid() {
		return model.Principal{}, fmt.Errorf("%w: unknown principal kind", domain.ErrUnauthorized)
	}
	return p, nil
}
