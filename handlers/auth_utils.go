package handlers

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"taskdesk/utilities"
)

// bearerToken extrai o token do header Authorization.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("header de autorização ausente")
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("token vazio")
	}
	return token, nil
}

// AuthMiddleware exige que o token Bearer seja o token da sessão atual.
func (a *App) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			utilities.LogError(err, "Autenticação falhou")
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		current := a.Sessions.Token()
		if current == "" || subtle.ConstantTimeCompare([]byte(token), []byte(current)) != 1 {
			utilities.LogError(fmt.Errorf("token não corresponde à sessão atual"), "Token inválido")
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	}
}
