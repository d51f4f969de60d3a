package pgdb2

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// UpsertOption tunes how [Engine.Upsert] builds its statement.
type UpsertOption func(*upsertPlan)

type upsertPlan struct {
	conflict    []string
	updateExprs map[string]string
	skip        map[string]bool
}

// UpsertConflict names the conflict target columns explicitly instead
// of reflecting the table's primary key.
func UpsertConflict(columns ...string) UpsertOption {
	return func(p *upsertPlan) { p.conflict = columns }
}

// UpsertUpdateExpr replaces the default EXCLUDED assignment for
// column with a raw SQL expression, for example ("updated_at",
// "now()"). A column only named here still gets updated even when the
// rows do not carry it.
func UpsertUpdateExpr(column, expr string) UpsertOption {
	return func(p *upsertPlan) {
		if p.updateExprs == nil {
			p.updateExprs = make(map[string]string)
		}
		p.updateExprs[column] = expr
	}
}

// UpsertSkip drops columns from the insert entirely, typically serial
// columns the database fills on its own.
func UpsertSkip(columns ...string) UpsertOption {
	return func(p *upsertPlan) {
		if p.skip == nil {
			p.skip = make(map[string]bool)
		}
		for _, col := range columns {
			p.skip[col] = true
		}
	}
}

// Upsert writes rows into table with INSERT ... ON CONFLICT DO
// UPDATE. The conflict target defaults to the table's reflected
// primary key; every non-key column is updated from EXCLUDED unless
// an option says otherwise. When nothing is left to update the
// statement degrades to DO NOTHING. Rows share the column set of the
// first row; a row missing one of those keys inserts NULL there.
//
// The returned count is the number of rows the statement touched;
// rows skipped by DO NOTHING are not counted.
func (e *Engine) Upsert(ctx context.Context, table string, rows []map[string]any, opts ...UpsertOption) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var plan upsertPlan
	for _, opt := range opts {
		opt(&plan)
	}

	cols := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		if !plan.skip[col] {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	if len(cols) == 0 {
		return 0, fmt.Errorf("upsert into %s: no columns left to insert", table)
	}

	conflict := plan.conflict
	if len(conflict) == 0 {
		schemaName, tableName := splitTable(table)
		s, err := e.reflected(ctx, schemaName)
		if err != nil {
			return 0, err
		}
		t, ok := s.Table(tableName)
		if !ok || len(t.PrimaryKey) == 0 {
			return 0, fmt.Errorf("%w: %s", ErrNoPrimaryKey, table)
		}
		conflict = t.PrimaryKey
	}

	conflictSet := make(map[string]bool, len(conflict))
	for _, col := range conflict {
		conflictSet[col] = true
	}

	set := make(map[string]string)
	for _, col := range cols {
		if conflictSet[col] {
			continue
		}
		set[col] = "EXCLUDED." + quoteIdent(col)
	}
	for col, expr := range plan.updateExprs {
		if conflictSet[col] {
			continue
		}
		set[col] = expr
	}

	suffix := "ON CONFLICT (" + joinQuoted(conflict) + ") "
	if len(set) == 0 {
		suffix += "DO NOTHING"
	} else {
		setCols := make([]string, 0, len(set))
		for col := range set {
			setCols = append(setCols, col)
		}
		sort.Strings(setCols)

		pairs := make([]string, len(setCols))
		for i, col := range setCols {
			pairs[i] = quoteIdent(col) + " = " + set[col]
		}
		suffix += "DO UPDATE SET " + strings.Join(pairs, ", ")
	}

	ins := e.sb.Insert(quoteTable(table)).Columns(quoteAll(cols)...).Suffix(suffix)
	for _, row := range rows {
		vals := make([]any, len(cols))
		for i, col := range cols {
			vals[i] = row[col]
		}
		ins = ins.Values(vals...)
	}

	res, err := ins.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("error upserting into %s: %w", table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	e.log.Debug().
		Str("table", table).
		Int("rows", len(rows)).
		Int64("affected", n).
		Msg("upserted rows")
	return n, nil
}

func splitTable(table string) (schema, name string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteTable(table string) string {
	schema, name := splitTable(table)
	if schema == "" {
		return pgx.Identifier{name}.Sanitize()
	}
	return pgx.Identifier{schema, name}.Sanitize()
}

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = quoteIdent(col)
	}
	return out
}

func joinQuoted(cols []string) string {
	return strings.Join(quoteAll(cols), ", ")
}
