// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The pgdb2 Authors

package pgdb2

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the reflected shape of one database schema: its tables,
// their columns in ordinal order, and their primary keys.
type Schema struct {
	Name   string
	Tables map[string]*Table
}

// Table returns a reflected table by name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.Tables[name]
	return t, ok
}

// Table is one reflected table.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

// ColumnNames returns the column names in ordinal order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column is one reflected column.
type Column struct {
	Name     string
	DataType string
	Nullable bool
	Default  string
	Position int
}

const reflectColumnsSQL = `
SELECT table_name, column_name, data_type, is_nullable, column_default, ordinal_position
FROM information_schema.columns
WHERE table_schema = $1
ORDER BY table_name, ordinal_position`

const reflectKeysSQL = `
SELECT tc.table_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name
 AND kcu.table_schema = tc.table_schema
WHERE tc.table_schema = $1 AND tc.constraint_type = 'PRIMARY KEY'
ORDER BY tc.table_name, kcu.ordinal_position`

// Reflect reads table, column and primary key metadata for schema
// from information_schema. The empty schema name means public. The
// result is cached on the engine for [Engine.Upsert]; calling Reflect
// again refreshes it.
func (e *Engine) Reflect(ctx context.Context, schema string) (*Schema, error) {
	if schema == "" {
		schema = "public"
	}

	s := &Schema{Name: schema, Tables: make(map[string]*Table)}

	if err := e.reflectColumns(ctx, s); err != nil {
		return nil, err
	}
	if err := e.reflectKeys(ctx, s); err != nil {
		return nil, err
	}

	e.meta[schema] = s
	e.log.Debug().
		Str("schema", schema).
		Int("tables", len(s.Tables)).
		Msg("reflected schema")
	return s, nil
}

func (e *Engine) reflectColumns(ctx context.Context, s *Schema) error {
	rows, err := e.db.QueryContext(ctx, reflectColumnsSQL, s.Name)
	if err != nil {
		return fmt.Errorf("error reflecting columns of %s: %w", s.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			table, column, dataType, nullable string
			colDefault                        sql.NullString
			position                          int
		)
		if err := rows.Scan(&table, &column, &dataType, &nullable, &colDefault, &position); err != nil {
			return fmt.Errorf("error reflecting columns of %s: %w", s.Name, err)
		}

		t, ok := s.Tables[table]
		if !ok {
			t = &Table{Name: table}
			s.Tables[table] = t
		}
		t.Columns = append(t.Columns, Column{
			Name:     column,
			DataType: dataType,
			Nullable: nullable == "YES",
			Default:  colDefault.String,
			Position: position,
		})
	}
	return rows.Err()
}

func (e *Engine) reflectKeys(ctx context.Context, s *Schema) error {
	rows, err := e.db.QueryContext(ctx, reflectKeysSQL, s.Name)
	if err != nil {
		return fmt.Errorf("error reflecting primary keys of %s: %w", s.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return fmt.Errorf("error reflecting primary keys of %s: %w", s.Name, err)
		}
		if t, ok := s.Tables[table]; ok {
			t.PrimaryKey = append(t.PrimaryKey, column)
		}
	}
	return rows.Err()
}

// reflected returns the cached reflection for schema, reflecting on
// first use.
func (e *Engine) reflected(ctx context.Context, schema string) (*Schema, error) {
	if schema == "" {
		schema = "public"
	}
	if s, ok := e.meta[schema]; ok {
		return s, nil
	}
	return e.Reflect(ctx, schema)
}
