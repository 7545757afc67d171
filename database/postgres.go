package database

import (
	"database/sql"
	"fmt"

	"taskdesk/config"
	"taskdesk/utilities"

	_ "github.com/lib/pq"
)

// ConnectPostgres abre a conexão com o PostgreSQL e devolve o KV sobre ela.
func ConnectPostgres(cfg config.DBConfig) (*SQL, error) {
	// Monta a string de conexão
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	// Abre a conexão
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		utilities.LogError(err, "Erro ao abrir conexão com o banco de dados")
		return nil, err
	}

	// Testa a conexão
	if err := db.Ping(); err != nil {
		utilities.LogError(err, "Erro ao conectar ao banco de dados")
		db.Close()
		return nil, err
	}

	store, err := NewSQL(db, DialectPostgres)
	if err != nil {
		db.Close()
		return nil, err
	}

	utilities.LogInfo("Conectado ao PostgreSQL com sucesso (%s:%s/%s)", cfg.Host, cfg.Port, cfg.Name)
	return store, nil
}
