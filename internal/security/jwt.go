package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
)

// Claims полезная нагрузка access и refresh токенов.
// Subject содержит id пользователя, ID (jti) случайный, чтобы два токена,
// выпущенных в одну секунду, различались
type Claims struct {
	Username string    `json:"username"`
	Type     TokenKind `json:"type"`
	jwt.RegisteredClaims
}

type TokenIssuerConfig struct {
	SecretKey       string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// TokenIssuer подписывает и проверяет токены HS512
type TokenIssuer struct {
	secretKey  []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type IssuerOption func(*TokenIssuer)

// WithClock подменяет источник времени, используется для проверки границ срока жизни
func WithClock(now func() time.Time) IssuerOption {
	return func(issuer *TokenIssuer) {
		issuer.now = now
	}
}

func NewTokenIssuer(cfg TokenIssuerConfig, opts ...IssuerOption) (*TokenIssuer, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("секретный ключ не задан")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("время жизни токенов должно быть положительным")
	}

	issuer := &TokenIssuer{
		secretKey:  []byte(cfg.SecretKey),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}

	return issuer, nil
}

func (issuer *TokenIssuer) AccessTTL() time.Duration {
	return issuer.accessTTL
}

func (issuer *TokenIssuer) IssueAccess(subject string, username string) (string, error) {
	return issuer.issue(subject, username, TokenKindAccess, issuer.accessTTL)
}

func (issuer *TokenIssuer) IssueRefresh(subject string, username string) (string, error) {
	return issuer.issue(subject, username, TokenKindRefresh, issuer.refreshTTL)
}

func (issuer *TokenIssuer) issue(subject string, username string, kind TokenKind, ttl time.Duration) (string, error) {
	now := issuer.now()

	claims := Claims{
		Username: username,
		Type:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := jwtToken.SignedString(issuer.secretKey)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, nil
}

// Verify проверяет подпись, алгоритм и срок действия токена.
// Возвращает ErrTokenExpired для просроченного токена и ErrInvalidSignature для остальных случаев
func (issuer *TokenIssuer) Verify(jwtTokenStr string) (*Claims, error) {
	claims := &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return issuer.secretKey, nil
	},
		jwt.WithTimeFunc(issuer.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !jwtToken.Valid || claims.Subject == "" {
		return nil, ErrInvalidSignature
	}

	return claims, nil
}
