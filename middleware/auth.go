package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"waysfood-api/models"
	"waysfood-api/policy"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const callerKey = "caller"

var errMissingToken = errors.New("access denied, token is missing")

type Claims struct {
	UserID uint            `json:"id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed JWT for a given user
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses tokenStr and returns its claims. Expired tokens yield an
// error matching jwt.ErrTokenExpired.
func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// AuthRequired validates the bearer token and injects the caller into context
func AuthRequired(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearer(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		claims, err := tokens.Verify(tokenStr)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			abort(c, http.StatusUnauthorized, "Token Expired")
			return
		case err != nil:
			abort(c, http.StatusUnauthorized, "Invalid Token")
			return
		case !claims.Role.Valid():
			abort(c, http.StatusUnauthorized, "Invalid Token")
			return
		}
		c.Set(callerKey, policy.Caller{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "access denied, token is missing")
			return
		}
		for _, r := range roles {
			if caller.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "access denied")
	}
}

// CallerFrom extracts the authenticated caller set by AuthRequired.
func CallerFrom(c *gin.Context) (policy.Caller, bool) {
	val, ok := c.Get(callerKey)
	if !ok {
		return policy.Caller{}, false
	}
	caller, ok := val.(policy.Caller)
	return caller, ok
}

func bearer(header string) (string, error) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", errMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"status": "error", "message": message})
}
