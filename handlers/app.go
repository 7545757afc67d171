package handlers

import (
	"encoding/json"
	"net/http"

	"taskdesk/auth"
	"taskdesk/tasks"
	"taskdesk/utilities"
)

// App reúne os stores usados pelos handlers. É montado uma vez em main.
type App struct {
	Sessions *auth.SessionStore
	Tasks    *tasks.Store
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utilities.LogError(err, "Erro ao codificar resposta JSON")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
