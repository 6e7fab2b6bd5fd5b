package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

func TestEnvSessionProviderWithoutCookie(t *testing.T) {
	provider := NewEnvSessionProvider("")

	session, err := provider.GetSession(context.Background())
	assert.Nil(t, session)
	assert.ErrorIs(t, err, shared.ErrAuthUnavailable)
}

func TestEnvSessionProviderWithCookie(t *testing.T) {
	provider := NewEnvSessionProvider("sessionid=abc123")

	session, err := provider.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "sessionid=abc123", session.Cookie)
	assert.NotEmpty(t, session.UserAgent)
}

func TestSocialFetchBlockedWithoutSession(t *testing.T) {
	// With no session available the run is blocked before any page load
	adapter := NewSocialAdapter(NewEnvSessionProvider(""), testScraperConfig())

	listings, tag, err := adapter.Fetch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.RunTagBlocked, tag)
	assert.Empty(t, listings, "a blocked social run must not leak partial results")
}
