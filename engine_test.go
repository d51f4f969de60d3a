package pgdb2

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Masterminds/squirrel"
)

func newTestEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()

	d, mock := newTestDatabase(t)
	t.Cleanup(func() { d.Close() })

	eng, err := d.Engine(context.Background())
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return eng, mock
}

func TestEngineSelect_BuildsDollarPlaceholders(t *testing.T) {
	eng, _ := newTestEngine(t)

	sql, args, err := eng.Select("id", "name").
		From("widgets").
		Where(squirrel.Eq{"id": 7}).
		ToSql()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "SELECT id, name FROM widgets WHERE id = $1" {
		t.Errorf("unexpected sql: %s", sql)
	}
	if len(args) != 1 || args[0] != 7 {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestEngineInsert_Builds(t *testing.T) {
	eng, _ := newTestEngine(t)

	sql, args, err := eng.Insert("widgets").
		Columns("id", "name").
		Values(1, "alpha").
		ToSql()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "INSERT INTO widgets (id,name) VALUES ($1,$2)" {
		t.Errorf("unexpected sql: %s", sql)
	}
	if len(args) != 2 {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestEngineUpdateDelete_Build(t *testing.T) {
	eng, _ := newTestEngine(t)

	sql, _, err := eng.Update("widgets").
		Set("name", "beta").
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "UPDATE widgets SET name = $1 WHERE id = $2" {
		t.Errorf("unexpected sql: %s", sql)
	}

	sql, _, err = eng.Delete("widgets").
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "DELETE FROM widgets WHERE id = $1" {
		t.Errorf("unexpected sql: %s", sql)
	}
}

func TestEngineBuilders_RunAgainstPool(t *testing.T) {
	eng, mock := newTestEngine(t)

	mock.ExpectQuery("SELECT name FROM widgets").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("alpha"))

	var name string
	err := eng.Select("name").
		From("widgets").
		Where(squirrel.Eq{"id": 7}).
		QueryRowContext(context.Background()).
		Scan(&name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "alpha" {
		t.Errorf("expected alpha, got %s", name)
	}
}

func TestEnginePing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	d, err := Open(WithConfig(testConfig()), WithDB(db))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer d.Close()

	eng, err := d.Engine(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectPing()
	if err := eng.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if eng.DB() != db {
		t.Error("DB must expose the adopted handle")
	}
}

func TestEngineReflect(t *testing.T) {
	eng, mock := newTestEngine(t)
	ctx := context.Background()

	cols := sqlmock.NewRows([]string{
		"table_name", "column_name", "data_type", "is_nullable", "column_default", "ordinal_position",
	}).
		AddRow("widgets", "id", "integer", "NO", "nextval('widgets_id_seq'::regclass)", 1).
		AddRow("widgets", "name", "text", "YES", nil, 2).
		AddRow("gadgets", "sku", "text", "NO", nil, 1)
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("public").
		WillReturnRows(cols)

	keys := sqlmock.NewRows([]string{"table_name", "column_name"}).
		AddRow("widgets", "id").
		AddRow("gadgets", "sku")
	mock.ExpectQuery("FROM information_schema.table_constraints").
		WithArgs("public").
		WillReturnRows(keys)

	schema, err := eng.Reflect(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if schema.Name != "public" {
		t.Errorf("expected schema public, got %s", schema.Name)
	}
	if len(schema.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(schema.Tables))
	}

	widgets, ok := schema.Table("widgets")
	if !ok {
		t.Fatal("expected widgets table")
	}
	if got := widgets.ColumnNames(); len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Errorf("unexpected columns: %v", got)
	}
	if len(widgets.PrimaryKey) != 1 || widgets.PrimaryKey[0] != "id" {
		t.Errorf("unexpected primary key: %v", widgets.PrimaryKey)
	}

	id := widgets.Columns[0]
	if id.Nullable {
		t.Error("id must not be nullable")
	}
	if id.Default == "" {
		t.Error("id should carry its serial default")
	}
	name := widgets.Columns[1]
	if !name.Nullable || name.Default != "" {
		t.Errorf("unexpected name column: %+v", name)
	}
}

func TestEngineReflect_RefreshesCache(t *testing.T) {
	eng, mock := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("FROM information_schema.columns").
			WithArgs("public").
			WillReturnRows(sqlmock.NewRows([]string{
				"table_name", "column_name", "data_type", "is_nullable", "column_default", "ordinal_position",
			}).AddRow("widgets", "id", "integer", "NO", nil, 1))
		mock.ExpectQuery("FROM information_schema.table_constraints").
			WithArgs("public").
			WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name"}).AddRow("widgets", "id"))
	}

	if _, err := eng.Reflect(ctx, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// An explicit Reflect always goes back to the server.
	if _, err := eng.Reflect(ctx, "public"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
