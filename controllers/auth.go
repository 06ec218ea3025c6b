package controllers

import (
	"net/http"

	"sauvage-server/utils"
)

// TokenIssuer signs identity payloads
type TokenIssuer interface {
	Issue(payload map[string]interface{}) (string, error)
}

// AuthController issues access tokens
type AuthController struct {
	Tokens TokenIssuer
}

func NewAuthController(tokens TokenIssuer) *AuthController {
	return &AuthController{Tokens: tokens}
}

// IssueToken signs whatever identity the caller posts. Sign-in itself happens upstream.
func (ac *AuthController) IssueToken(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if !decodeBody(w, r, &payload) {
		return
	}

	token, err := ac.Tokens.Issue(payload)
	if err != nil {
		serverError(w, r, "issue token", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
