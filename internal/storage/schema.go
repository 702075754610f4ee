package storage

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS gps (
		id_gps         INTEGER PRIMARY KEY AUTOINCREMENT,
		nome_lider_gps VARCHAR(45) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS acolhedores (
		id_acolhedor      INTEGER PRIMARY KEY AUTOINCREMENT,
		acolhedor_nome    VARCHAR(45) NOT NULL,
		acolhedor_apelido VARCHAR(45),
		acolhedor_email   VARCHAR(45) NOT NULL UNIQUE,
		acolhedor_celular VARCHAR(45),
		id_gps            INTEGER,
		FOREIGN KEY (id_gps) REFERENCES gps(id_gps)
	)`,
	`CREATE TABLE IF NOT EXISTS acolhimento (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		nome           VARCHAR(70) NOT NULL,
		idade          INTEGER,
		numero         VARCHAR(45),
		data_decisao   TEXT NOT NULL,
		data_carga     TEXT DEFAULT CURRENT_TIMESTAMP,
		status_contato VARCHAR(45) DEFAULT 'Pendente',
		observacoes    VARCHAR(255),
		id_acolhedor   INTEGER,
		HouM           VARCHAR(1),
		evento         VARCHAR(45),
		FOREIGN KEY (id_acolhedor) REFERENCES acolhedores(id_acolhedor),
		UNIQUE(nome, data_decisao)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_acolhimento_status ON acolhimento(status_contato, id_acolhedor)`,
}

// Columns added after the first schema revision. Databases created by
// older revisions get them on open.
var addedColumns = []struct {
	table, column, decl string
}{
	{"acolhedores", "acolhedor_apelido", "VARCHAR(45)"},
	{"acolhedores", "acolhedor_celular", "VARCHAR(45)"},
	{"acolhimento", "evento", "VARCHAR(45)"},
}

func (s *Storage) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, c := range addedColumns {
		ok, err := s.hasColumn(ctx, c.table, c.column)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.decl)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}

func (s *Storage) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
