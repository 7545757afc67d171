package main

import (
	"context"
	"fmt"
	"os"

	"taskdesk/auth"
	"taskdesk/config"
	"taskdesk/database"
	"taskdesk/handlers"
	"taskdesk/tasks"
)

// application é a composição usada tanto pelo servidor quanto pela CLI.
type application struct {
	cfg   *config.Config
	store database.Store
	*handlers.App
}

// newApplication abre o armazenamento e restaura a sessão e as tarefas.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	store, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	sessions := auth.NewSessionStore(store, auth.NewStubProvider(cfg.AdminEmailMarker))
	taskStore := tasks.NewStore(store, sessions)

	sessions.Restore(ctx)
	taskStore.Restore(ctx)

	return &application{
		cfg:   cfg,
		store: store,
		App:   &handlers.App{Sessions: sessions, Tasks: taskStore},
	}, nil
}

func (a *application) Close() error {
	return a.store.Close()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
