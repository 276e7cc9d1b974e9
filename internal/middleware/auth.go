package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/imagedrop/service/internal/logger"
	"github.com/imagedrop/service/internal/response"
	"github.com/rs/zerolog"
)

// SessionCookie is the cookie the browser sends with credentials: "include".
const SessionCookie = "session"

// SubjectKey is the context key for the verified token subject.
const SubjectKey contextKey = "subject"

// RequireSession returns middleware that validates an HS256 token taken from
// the Authorization Bearer header or, failing that, the session cookie. An
// empty secret disables the check.
func RequireSession(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if jwtSecret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := tokenFromRequest(r)
			if !ok {
				response.Unauthorized(w, "unauthorized")
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				response.Unauthorized(w, "unauthorized")
				return
			}

			sub, _ := token.Claims.GetSubject()
			l := logger.FromRequest(r).GetChildLogger()
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("subject", sub)
			})

			ctx := context.WithValue(r.Context(), SubjectKey, sub)
			ctx = l.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the subject set by RequireSession, or "".
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(SubjectKey).(string)
	return sub
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, found := strings.Cut(h, " ")
		if !found || scheme != "Bearer" || token == "" {
			return "", false
		}
		return token, true
	}

	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
