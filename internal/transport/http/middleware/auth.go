package httpmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cwrk-planet/watch-party/internal/domain"
	"github.com/cwrk-planet/watch-party/pkg/httputil"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

type TokenVerifier interface {
	Verify(token string) (domain.Principal, error)
}

// Auth requires "Authorization: Bearer <jwt>" and puts the verified Principal in the context.
func Auth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
				httputil.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			p, err := v.Verify(strings.TrimSpace(auth[7:]))
			if err != nil {
				slog.Debug("auth rejected", httputil.RequestIDAttr(r.Context()), slog.Any("err", err))
				httputil.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPrincipal, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func PrincipalFromCtx(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(domain.Principal)
	return p, ok
}
