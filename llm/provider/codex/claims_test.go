package codex

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)

	return token
}

func TestExtractAccountIDRootClaim(t *testing.T) {
	t.Parallel()

	token := signedToken(t, jwt.MapClaims{"chatgpt_account_id": "acct-root"})
	require.Equal(t, "acct-root", ExtractAccountID(token))
}

func TestExtractAccountIDNamespacedClaim(t *testing.T) {
	t.Parallel()

	token := signedToken(t, jwt.MapClaims{
		"https://api.openai.com/auth": map[string]any{
			"chatgpt_account_id": "acct-ns",
		},
	})
	require.Equal(t, "acct-ns", ExtractAccountID(token))
}

func TestExtractAccountIDRootWinsOverNamespace(t *testing.T) {
	t.Parallel()

	token := signedToken(t, jwt.MapClaims{
		"chatgpt_account_id": "acct-root",
		"https://api.openai.com/auth": map[string]any{
			"chatgpt_account_id": "acct-ns",
		},
	})
	require.Equal(t, "acct-root", ExtractAccountID(token))
}

func TestExtractAccountIDMissing(t *testing.T) {
	t.Parallel()

	require.Empty(t, ExtractAccountID(signedToken(t, jwt.MapClaims{"sub": "user-1"})))
	require.Empty(t, ExtractAccountID("not-a-jwt"))
	require.Empty(t, ExtractAccountID(""))
}
