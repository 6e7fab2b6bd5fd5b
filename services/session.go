package services

import (
	"context"

	"github.com/fenilmodi00/scholarship-backend/shared"
)

// SocialSession is an authenticated handle for the social platform. The
// pipeline treats it as opaque: how the cookie was obtained and refreshed is
// the provider's concern.
type SocialSession struct {
	Cookie    string
	UserAgent string
}

// SessionProvider supplies authenticated sessions for the social adapter.
// Implementations return shared.ErrAuthUnavailable when no session can be
// produced; the adapter then reports the run as blocked.
type SessionProvider interface {
	GetSession(ctx context.Context) (*SocialSession, error)
}

// EnvSessionProvider serves a session from statically configured cookie
// material
type EnvSessionProvider struct {
	cookie string
}

// NewEnvSessionProvider creates a provider backed by a configured cookie
func NewEnvSessionProvider(cookie string) *EnvSessionProvider {
	return &EnvSessionProvider{cookie: cookie}
}

func (p *EnvSessionProvider) GetSession(ctx context.Context) (*SocialSession, error) {
	if p.cookie == "" {
		return nil, shared.ErrAuthUnavailable
	}
	return &SocialSession{
		Cookie:    p.cookie,
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15",
	}, nil
}
