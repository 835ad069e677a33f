package oauth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePKCE(t *testing.T) {
	t.Parallel()

	pkce := GeneratePKCE()
	require.NotEmpty(t, pkce.Verifier)
	require.NotEmpty(t, pkce.Challenge)
	require.NotEqual(t, pkce.Verifier, pkce.Challenge)

	sum := sha256.Sum256([]byte(pkce.Verifier))
	require.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), pkce.Challenge)

	other := GeneratePKCE()
	require.NotEqual(t, pkce.Verifier, other.Verifier)
}

func TestGenerateState(t *testing.T) {
	t.Parallel()

	state := GenerateState()
	require.NotEmpty(t, state)
	require.NotEqual(t, state, GenerateState())
}
