package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName — имя cookie с JWT.
const CookieName = "auth_token"

const tokenTTL = 24 * time.Hour

// Grant — дополнительное право, зашитое в токен.
type Grant string

// GrantAdvanced разрешает запросы в advanced-режиме (показ hidden-слоёв).
const GrantAdvanced Grant = "advanced"

type ctxKey int

const (
	userIDKey ctxKey = iota
	advancedKey
)

type claims struct {
	UserID   int64 `json:"user_id"`
	Advanced bool  `json:"adv,omitempty"`
	jwt.RegisteredClaims
}

// SetLoginCookie подписывает JWT и кладёт его в cookie ответа.
func SetLoginCookie(w http.ResponseWriter, userID int64, secret string, grants ...Grant) error {
	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	for _, g := range grants {
		if g == GrantAdvanced {
			c.Advanced = true
		}
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(tokenTTL),
	})
	return nil
}

// WithAuth разбирает cookie и кладёт user_id в контекст.
// Запрос без валидного токена проходит дальше анонимным.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			c := &claims{}
			token, err := jwt.ParseWithClaims(cookie.Value, c, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				if logger != nil {
					logger.Debugw("invalid auth token", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, c.UserID)
			ctx = context.WithValue(ctx, advancedKey, c.Advanced)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext возвращает user_id, если запрос аутентифицирован.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// HasAdvancedGrant сообщает, выдано ли пользователю право advanced-режима.
func HasAdvancedGrant(ctx context.Context) bool {
	adv, _ := ctx.Value(advancedKey).(bool)
	return adv
}
