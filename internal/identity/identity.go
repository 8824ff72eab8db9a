package identity

import (
	"context"
	"errors"
)

// ErrUnknownToken means the credential did not resolve to any identity.
var ErrUnknownToken = errors.New("unknown token")

// Provider resolves a handshake credential token to a user id.
type Provider interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// StaticProvider resolves tokens from a fixed map, typically loaded from
// configuration.
type StaticProvider struct {
	tokens map[string]string
}

func NewStaticProvider(tokens map[string]string) *StaticProvider {
	if tokens == nil {
		tokens = map[string]string{}
	}
	return &StaticProvider{tokens: tokens}
}

func (p *StaticProvider) Resolve(ctx context.Context, token string) (string, error) {
	userID, ok := p.tokens[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return userID, nil
}

// InsecureProvider accepts any non-empty token as its own user id.
// Development mode only; gated by auth.require_token = false.
type InsecureProvider struct{}

func (InsecureProvider) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnknownToken
	}
	return token, nil
}
