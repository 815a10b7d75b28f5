package httpapi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	principalKey = "principal"
	roleAdmin    = "admin"
)

// Claims токен провайдера аутентификации: sub - id пользователя, role - "admin" или пусто
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier проверяет HS256-токены
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify возвращает Principal из валидного токена
func (v *TokenVerifier) Verify(tokenString string) (*model.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return nil, errors.New("token has no subject")
	}

	return &model.Principal{
		UserID:  subject,
		IsAdmin: claims.Role == roleAdmin,
	}, nil
}

// Issue подписывает токен; используется в тестах и dev-окружении
func (v *TokenVerifier) Issue(userID string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if admin {
		claims.Role = roleAdmin
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate кладёт Principal в контекст. Без заголовка - гость,
// битый токен - 401.
func Authenticate(v *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(principalKey, &model.Principal{})
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			writeError(c, model.ErrNotAuthenticated)
			return
		}

		principal, err := v.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			_ = c.Error(err)
			writeError(c, model.ErrNotAuthenticated)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireUser пропускает только аутентифицированных
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principalFrom(c).Anonymous() {
			writeError(c, model.ErrNotAuthenticated)
			return
		}
		c.Next()
	}
}

// RequireAdmin пропускает только администраторов
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principalFrom(c)
		if p.Anonymous() {
			writeError(c, model.ErrNotAuthenticated)
			return
		}
		if !p.Admin() {
			writeError(c, model.ErrForbidden)
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) *model.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*model.Principal); ok {
			return p
		}
	}
	return &model.Principal{}
}
