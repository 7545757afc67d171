package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"taskdesk/models"
	"taskdesk/utilities"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse é devolvido após login e cadastro.
type SessionResponse struct {
	Token   string         `json:"token"`
	Profile models.Profile `json:"profile"`
}

// SessionView é o estado da sessão exibido pelas telas.
type SessionView struct {
	Loading       bool            `json:"loading"`
	Authenticated bool            `json:"authenticated"`
	Profile       *models.Profile `json:"profile"`
}

func (a *App) sessionResponse() SessionResponse {
	profile, _ := a.Sessions.Profile()
	return SessionResponse{Token: a.Sessions.Token(), Profile: profile}
}

// LoginHandler autentica pelo provedor stub e abre a sessão.
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Iniciando login")

	var input LoginInput
	if err := decodeJSON(r, &input); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON do corpo da requisição")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(input.Email) == "" {
		utilities.LogError(fmt.Errorf("email não fornecido"), "Validação falhou")
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}
	if input.Password == "" {
		utilities.LogError(fmt.Errorf("senha não fornecida"), "Validação falhou")
		http.Error(w, "Password is required", http.StatusBadRequest)
		return
	}

	if !a.Sessions.Login(r.Context(), input.Email, input.Password) {
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, a.sessionResponse())
}

// RegisterHandler cria o usuário e já deixa a sessão aberta.
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	utilities.LogDebug("Iniciando registro de novo usuário")

	var input RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		utilities.LogError(err, "Erro ao decodificar JSON do corpo da requisição")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(input.Email) == "" {
		utilities.LogError(fmt.Errorf("email não fornecido"), "Validação falhou")
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}
	if input.Password == "" {
		utilities.LogError(fmt.Errorf("senha não fornecida"), "Validação falhou")
		http.Error(w, "Password is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		utilities.LogError(fmt.Errorf("nome não fornecido"), "Validação falhou")
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	if !a.Sessions.Register(r.Context(), input.Name, input.Email, input.Password) {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, a.sessionResponse())
}

func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Sessions.Logout(r.Context()) {
		http.Error(w, "Failed to sign out", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logout efetuado com sucesso",
	})
}

// UserHandler devolve o estado da sessão; não exige token.
func (a *App) UserHandler(w http.ResponseWriter, r *http.Request) {
	view := SessionView{
		Loading:       a.Sessions.Loading(),
		Authenticated: a.Sessions.Authenticated(),
	}
	if profile, ok := a.Sessions.Profile(); ok {
		view.Profile = &profile
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateUserHandler altera nome e avatar do usuário logado.
func (a *App) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	var updateData struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}

	if err := decodeJSON(r, &updateData); err != nil {
		utilities.LogError(err, "Erro ao decodificar dados de atualização")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if !a.Sessions.UpdateProfile(r.Context(), strings.TrimSpace(updateData.Name), strings.TrimSpace(updateData.Avatar)) {
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	profile, _ := a.Sessions.Profile()
	writeJSON(w, http.StatusOK, profile)
}
