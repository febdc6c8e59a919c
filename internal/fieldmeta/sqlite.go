package fieldmeta

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteProvider serves field metadata from the relational field-definition
// database (fields joined with categories and data types). All rows are
// loaded once at construction; lookups afterwards are lock-free map reads,
// safe for concurrent use across assembly workers.
type SQLiteProvider struct {
	fields map[string]FieldMeta
}

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS data_types (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS fields (
	name                 TEXT PRIMARY KEY,
	category_id          INTEGER REFERENCES categories(id),
	type_id              INTEGER REFERENCES data_types(id),
	format_hint          TEXT NOT NULL DEFAULT '',
	required_when_active INTEGER NOT NULL DEFAULT 0,
	default_value        TEXT NOT NULL DEFAULT ''
);
`

// EnsureSchema creates the field-definition tables when they are missing.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create field metadata schema: %w", err)
	}
	return nil
}

// OpenSQLite opens the database at path and loads the field model.
func OpenSQLite(path string, log *slog.Logger) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open field metadata db: %w", err)
	}
	defer db.Close()
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return LoadSQLite(db, log)
}

// LoadSQLite reads the whole field model from an open database.
func LoadSQLite(db *sql.DB, log *slog.Logger) (*SQLiteProvider, error) {
	rows, err := db.Query(`
		SELECT f.name,
		       COALESCE(c.name, ''),
		       COALESCE(t.name, ''),
		       f.format_hint,
		       f.required_when_active,
		       f.default_value
		FROM fields f
		LEFT JOIN categories c ON c.id = f.category_id
		LEFT JOIN data_types t ON t.id = f.type_id`)
	if err != nil {
		return nil, fmt.Errorf("query field metadata: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]FieldMeta)
	for rows.Next() {
		var m FieldMeta
		var required int
		if err := rows.Scan(&m.Name, &m.Category, &m.DataType, &m.FormatHint, &required, &m.DefaultValue); err != nil {
			return nil, fmt.Errorf("scan field metadata: %w", err)
		}
		m.RequiredWhenActive = required != 0
		fields[m.Name] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate field metadata: %w", err)
	}

	log.Info("field metadata loaded", "fields", len(fields))
	return &SQLiteProvider{fields: fields}, nil
}

func (p *SQLiteProvider) ByName(field string) (FieldMeta, bool) {
	m, ok := p.fields[field]
	return m, ok
}

// Len returns the number of known fields.
func (p *SQLiteProvider) Len() int { return len(p.fields) }
