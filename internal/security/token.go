package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sharebite/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	issuer   = "sharebite-api"
	audience = "sharebite-access"
)

// OrgClaims are carried by every access token
type OrgClaims struct {
	OrgID int32       `json:"org_id"`
	Email string      `json:"email,omitempty"`
	Name  string      `json:"name,omitempty"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor returns the lifecycle actor described by the claims.
func (c *OrgClaims) Actor() domain.Actor {
	return domain.Actor{ID: c.OrgID, Name: c.Name, Role: c.Role}
}

type TokenManager interface {
	GenerateAccessToken(org *domain.Organization) (string, error)
	ValidateToken(tokenString string) (*OrgClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateAccessToken(org *domain.Organization) (string, error) {
	now := m.now()
	claims := OrgClaims{
		OrgID: org.ID,
		Email: org.Email,
		Name:  org.Name,
		Role:  org.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(org.ID)),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*OrgClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &OrgClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithAudience(audience), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*OrgClaims); ok && token.Valid {
		if claims.OrgID == 0 && claims.Subject != "" {
			id, _ := strconv.Atoi(claims.Subject)
			claims.OrgID = int32(id)
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
