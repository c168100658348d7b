package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"progresshub/internal/domain"
)

const (
	jwtIssuer    = "progresshub"
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

// JWTService emite y valida los tokens de sesion. Los refresh tokens rotan:
// cada jti vive en el RefreshTokenStore y se revoca al usarse.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshTokenStore
	parser     *jwt.Parser
}

// TokenPair es la sesion emitida al cliente para Identity.
type TokenPair struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Identity     domain.Identity `json:"-"`
}

// Session convierte el par en la sesion que recibe el cliente.
func (p TokenPair) Session() domain.AuthSession {
	return domain.AuthSession{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.ExpiresAt,
		User:         p.Identity,
	}
}

type Claims struct {
	UserID         string `json:"uid"`
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	EmailConfirmed bool   `json:"email_confirmed"`
	TokenType      string `json:"typ"`
	jwt.RegisteredClaims
}

// Identity devuelve la identidad contenida en los claims.
func (c Claims) Identity() domain.Identity {
	return domain.Identity{
		UserID:      c.UserID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
}

func (c Claims) user() domain.User {
	u := domain.User{ID: c.UserID, Email: c.Email, DisplayName: c.DisplayName}
	if c.EmailConfirmed && c.IssuedAt != nil {
		confirmed := c.IssuedAt.Time
		u.EmailConfirmedAt = &confirmed
	}
	return u
}

// NewJWTServiceWithStore usa TTLs por defecto de 15 minutos y 30 dias; store nil
// cae a memoria.
func NewJWTServiceWithStore(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *JWTService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	if store == nil {
		store = NewMemoryRefreshTokenStore()
	}
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(jwtIssuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// GeneratePair abre una sesion nueva para user.
func (s *JWTService) GeneratePair(user domain.User) (TokenPair, error) {
	if len(s.secret) == 0 {
		return TokenPair{}, ErrJWTInvalid
	}
	now := time.Now().UTC()
	access, err := s.sign(user, tokenAccess, "", now, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	jti := uuid.NewString()
	refresh, err := s.sign(user, tokenRefresh, jti, now, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.store.Store(jti, user.ID, s.refreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		ExpiresAt:    now.Add(s.accessTTL),
		Identity:     user.Identity(),
	}, nil
}

// RefreshPair canjea un refresh token vigente por una sesion nueva. El token
// usado queda revocado.
func (s *JWTService) RefreshPair(refreshToken string) (TokenPair, error) {
	claims, err := s.verify(refreshToken, tokenRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return TokenPair{}, ErrJWTInvalid
	}
	if err := s.store.Revoke(claims.ID); err != nil {
		return TokenPair{}, ErrJWTInvalid
	}
	return s.GeneratePair(claims.user())
}

func (s *JWTService) RevokeRefresh(refreshToken string) error {
	claims, err := s.verify(refreshToken, tokenRefresh)
	if err != nil {
		return err
	}
	return s.store.Revoke(claims.ID)
}

func (s *JWTService) ParseAccessToken(accessToken string) (Claims, error) {
	return s.verify(accessToken, tokenAccess)
}

func (s *JWTService) sign(user domain.User, kind, jti string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:         user.ID,
		Email:          user.Email,
		DisplayName:    user.DisplayName,
		EmailConfirmed: user.Confirmed(),
		TokenType:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    jwtIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTService) verify(raw, kind string) (Claims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(raw) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if claims.TokenType != kind || claims.UserID == "" || claims.Subject != claims.UserID {
		return Claims{}, ErrJWTInvalid
	}
	if kind == tokenRefresh && claims.ID == "" {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}
