package tesla

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchange(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultAuthHost).
		Post("/oauth2/v3/token").
		MatchType("url").
		Reply(http.StatusOK).
		File("testdata/token.json")

	token, err := Exchange(context.Background(), Config{}, "old-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "fresh-access-token", token.AccessToken)
	assert.Equal(t, "rotated-refresh-token", token.RefreshToken)
	assert.True(t, gock.IsDone())
}

func TestExchange_InvalidGrant(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultAuthHost).
		Post("/oauth2/v3/token").
		Reply(http.StatusUnauthorized).
		File("testdata/token-invalid.json")

	token, err := Exchange(context.Background(), Config{}, "revoked")
	assert.Nil(t, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestExchange_EmptyRefreshToken(t *testing.T) {
	token, err := Exchange(context.Background(), Config{}, "")
	assert.Nil(t, token)
	assert.Error(t, err)
}

func TestNewFromRefreshToken(t *testing.T) {
	defer gock.Off()
	gock.New(DefaultAuthHost).
		Post("/oauth2/v3/token").
		Reply(http.StatusOK).
		File("testdata/token.json")
	gock.New(DefaultOwnerAPIHost).
		Get("/api/1/products").
		MatchHeader("Authorization", "Bearer fresh-access-token").
		Reply(http.StatusOK).
		File("testdata/products.json")

	c, token, err := NewFromRefreshToken(context.Background(), Config{}, "old-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "rotated-refresh-token", token.RefreshToken)
	assert.Equal(t, "fresh-access-token", c.AccessToken())

	_, err = c.Products(context.Background())
	require.NoError(t, err)
	assert.True(t, gock.IsDone())
}
