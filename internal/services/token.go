package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"social-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the session token
const CookieName = "jwt"

var (
	// ErrInvalidToken covers tampered, malformed and wrongly signed tokens
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for correctly signed tokens past their expiry
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims is the payload of a session token
type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless session tokens.
// Revocation only clears the client cookie: a token copied out of the
// cookie before logout keeps verifying until it expires.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

// NewTokenService creates a token service from configuration
func NewTokenService(jwtCfg config.JWTConfig, appCfg config.AppConfig) *TokenService {
	return &TokenService{
		secret:   []byte(jwtCfg.Secret),
		lifetime: jwtCfg.Lifetime,
		secure:   !appCfg.IsDevelopment(),
		now:      time.Now,
	}
}

// Issue signs a token for userID and returns it with the cookie carrying it
func (s *TokenService) Issue(userID string) (string, *http.Cookie, error) {
	now := s.now()
	expiresAt := now.Add(s.lifetime)

	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(s.lifetime / time.Second),
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
	return tokenString, cookie, nil
}

// Verify validates a token and returns the user ID it was issued for
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Revoke returns a cookie that clears the session cookie in the browser
func (s *TokenService) Revoke() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // rendered as Max-Age=0
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
