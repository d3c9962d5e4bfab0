package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nextstep/gift/internal/domain/members"
)

var ErrUnauthorized = errors.New("unauthorized")

type contextKey struct{}

// WithMember stores the authenticated member in ctx.
func WithMember(ctx context.Context, member members.Member) context.Context {
	return context.WithValue(ctx, contextKey{}, member)
}

// MemberFromContext returns the member placed by Resolver.Middleware.
func MemberFromContext(ctx context.Context) (members.Member, bool) {
	m, ok := ctx.Value(contextKey{}).(members.Member)
	return m, ok
}

// MemberFinder looks up the member a token was issued for.
type MemberFinder interface {
	FindByEmail(ctx context.Context, email string) (members.Member, error)
}

// Resolver turns bearer tokens into members.
type Resolver struct {
	tokens  *Provider
	members MemberFinder
	logger  *slog.Logger
}

// NewResolver builds a resolver.
func NewResolver(tokens *Provider, finder MemberFinder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{tokens: tokens, members: finder, logger: logger}
}

// Resolve authenticates an Authorization header value.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (members.Member, error) {
	if authorization == "" {
		return members.Member{}, ErrUnauthorized
	}

	scheme, token, ok := strings.Cut(authorization, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return members.Member{}, ErrUnauthorized
	}

	email, err := r.tokens.ParseToken(strings.TrimSpace(token))
	if err != nil {
		return members.Member{}, errors.Join(ErrUnauthorized, err)
	}

	member, err := r.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, members.ErrNotFound) {
			return members.Member{}, ErrUnauthorized
		}
		return members.Member{}, err
	}
	return member, nil
}

// Middleware rejects requests without a valid bearer token with an empty
// 401 response.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		member, err := r.Resolve(req.Context(), req.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				r.logger.Debug("authentication failed", "path", req.URL.Path, "err", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			r.logger.Error("resolve member", "path", req.URL.Path, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, req.WithContext(WithMember(req.Context(), member)))
	})
}
