package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"taskdesk/config"
	"taskdesk/handlers"
	"taskdesk/utilities"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// newRouter monta as rotas da API sobre app, com logging e CORS.
func newRouter(app *handlers.App, cfg *config.Config) http.Handler {
	r := mux.NewRouter()

	// Aplicar o middleware de logging global em todas as rotas
	r.Use(handlers.LoggingMiddleware)

	// --- Rotas de Autenticação e Públicas ---
	r.HandleFunc("/auth/login", app.LoginHandler).Methods("POST")
	r.HandleFunc("/auth/register", app.RegisterHandler).Methods("POST")
	r.HandleFunc("/auth/logout", app.AuthMiddleware(app.LogoutHandler)).Methods("POST")

	// --- Rotas do usuário logado ---
	r.HandleFunc("/user/info", app.UserHandler).Methods("GET")
	r.HandleFunc("/user/update", app.AuthMiddleware(app.UpdateUserHandler)).Methods("PUT")

	// --- Rotas de Tarefas (protegidas) ---
	r.HandleFunc("/task/create", app.AuthMiddleware(app.CreateTaskHandler)).Methods("POST")
	r.HandleFunc("/task/list", app.AuthMiddleware(app.ListTasksHandler)).Methods("GET")
	r.HandleFunc("/task/stats", app.AuthMiddleware(app.StatsHandler)).Methods("GET")
	r.HandleFunc("/task/info/{id}", app.AuthMiddleware(app.GetTaskHandler)).Methods("GET")
	r.HandleFunc("/task/update/{id}", app.AuthMiddleware(app.UpdateTaskHandler)).Methods("PUT")
	r.HandleFunc("/task/delete/{id}", app.AuthMiddleware(app.DeleteTaskHandler)).Methods("DELETE")
	r.HandleFunc("/task/expire", app.AuthMiddleware(app.ExpireTasksHandler)).Methods("POST")

	// Configuração do CORS
	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	allowedOrigins := cfg.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
		utilities.LogInfo("CORS_ALLOWED_ORIGINS não definida, permitindo todas as origens ('*').")
	}
	utilities.LogDebug("Configurando CORS com origens permitidas: %v", allowedOrigins)

	return gorillahandlers.CORS(headers, methods, gorillahandlers.AllowedOrigins(allowedOrigins))(r)
}

// serve atende a API até ctx ser cancelado.
func serve(ctx context.Context, app *handlers.App, cfg *config.Config) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(app, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utilities.LogInfo("Servidor iniciado em %s", cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		utilities.LogInfo("Encerrando servidor")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
