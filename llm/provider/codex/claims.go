package codex

import (
	"github.com/golang-jwt/jwt/v5"
)

const authClaimNamespace = "https://api.openai.com/auth"

// ExtractAccountID pulls the ChatGPT account id out of an OpenAI-issued JWT
// without verifying its signature. The claim appears either at the root or
// under the auth namespace depending on token vintage; both are checked.
// Returns "" when the token does not parse or carries no account id.
func ExtractAccountID(tokenStr string) string {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	if accountID, ok := claims["chatgpt_account_id"].(string); ok && accountID != "" {
		return accountID
	}

	authClaims, ok := claims[authClaimNamespace].(map[string]any)
	if !ok {
		return ""
	}

	accountID, ok := authClaims["chatgpt_account_id"].(string)
	if !ok {
		return ""
	}

	return accountID
}
