package oauth

import "golang.org/x/oauth2"

// PKCE is a verifier/challenge pair binding an authorization request to the
// later token exchange. It lives only for the duration of one login attempt.
type PKCE struct {
	Verifier  string
	Challenge string
}

// GeneratePKCE returns a fresh verifier (32 random bytes, base64url) and its
// S256 challenge.
func GeneratePKCE() PKCE {
	verifier := oauth2.GenerateVerifier()

	return PKCE{
		Verifier:  verifier,
		Challenge: oauth2.S256ChallengeFromVerifier(verifier),
	}
}

// GenerateState returns an independent high-entropy token for CSRF binding
// of the callback redirect. It is never reused as a code verifier.
func GenerateState() string {
	return oauth2.GenerateVerifier()
}
