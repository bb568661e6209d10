package authentication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	_, err := GetToken()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	creds := &StoredCredentials{Token: "jwt", UserID: "user-1", Email: "reader@example.com"}
	require.NoError(t, StoreToken(creds))

	got, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, creds, got)

	require.NoError(t, DeleteToken())
	require.NoError(t, DeleteToken())
	_, err = GetToken()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
