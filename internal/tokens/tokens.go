package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/study_planner/internal/apperr"
)

const TTL = 24 * time.Hour

// Claims carry the principal; Subject mirrors UserID.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{Secret: secret, TTL: TTL, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return TTL
	}
	return s.TTL
}

func (s *Service) Issue(userID, email string) (string, time.Time, error) {
	if len(s.Secret) == 0 {
		return "", time.Time{}, fmt.Errorf("jwt secret is not set: %w", apperr.ErrConfiguration)
	}
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("empty principal: %w", apperr.ErrValidation)
	}

	now := s.now()
	exp := now.Add(s.ttl())
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify never tells the caller why a token was rejected.
func (s *Service) Verify(tokenStr string) (*Claims, error) {
	if len(s.Secret) == 0 {
		return nil, fmt.Errorf("jwt secret is not set: %w", apperr.ErrConfiguration)
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid {
		return nil, apperr.ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, apperr.ErrInvalidToken
	}
	return &claims, nil
}
