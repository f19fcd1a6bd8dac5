package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tableUsers = "users"
	colName    = "name"
	colEmail   = "email"
)

func intPtr(n int) *int {
	return &n
}

func TestWrapIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		grammar  *Grammar
		input    string
		expected string
	}{
		{"mysql plain", NewMySQL(), "name", "`name`"},
		{"mysql dotted", NewMySQL(), "users.name", "`users`.`name`"},
		{"mysql star", NewMySQL(), "*", "*"},
		{"mysql dotted star", NewMySQL(), "users.*", "`users`.*"},
		{"sqlite plain", NewSQLite(), "name", `"name"`},
		{"postgres dotted", NewPostgres(), "users.name", `"users"."name"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.grammar.Wrap(tt.input))
		})
	}
}

func TestCompileSelectDefaults(t *testing.T) {
	g := NewMySQL()
	sql := g.CompileSelect(&Query{Table: tableUsers})
	assert.Equal(t, "select * from `users`", sql)
}

func TestCompileSelectFunctionAndAliasPassThrough(t *testing.T) {
	g := NewMySQL()

	tests := []struct {
		expr     string
		expected string
	}{
		{"count(*)", "select count(*) from `users`"},
		{"COUNT(id)", "select COUNT(id) from `users`"},
		{"upper(name)", "select upper(name) from `users`"},
		{"name as n", "select name as n from `users`"},
		// A column merely named like a function is still wrapped.
		{"upper_bound", "select `upper_bound` from `users`"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			sql := g.CompileSelect(&Query{Table: tableUsers, Selects: []string{tt.expr}})
			assert.Equal(t, tt.expected, sql)
		})
	}
}

func TestCompileSelectWheres(t *testing.T) {
	g := NewMySQL()
	q := &Query{
		Table: tableUsers,
		Wheres: []Where{
			{Kind: WhereBasic, Connector: ConnectorAnd, Column: "age", Operator: ">"},
			{Kind: WhereBasic, Connector: ConnectorOr, Column: colName, Operator: "="},
			{Kind: WhereIn, Connector: ConnectorAnd, Column: "id", Count: 3},
			{Kind: WhereNull, Connector: ConnectorAnd, Column: "deleted_at"},
			{Kind: WhereNotNull, Connector: ConnectorAnd, Column: colEmail},
		},
	}

	sql := g.CompileSelect(q)
	expected := "select * from `users`" +
		" where `age` > ?" +
		" or `name` = ?" +
		" and `id` in (?, ?, ?)" +
		" and `deleted_at` is null" +
		" and `email` is not null"
	assert.Equal(t, expected, sql)
}

func TestCompileSelectFirstConnectorAlwaysWhere(t *testing.T) {
	g := NewSQLite()
	q := &Query{
		Table: tableUsers,
		Wheres: []Where{
			// An orWhere-begun chain still renders a leading where.
			{Kind: WhereBasic, Connector: ConnectorOr, Column: colName, Operator: "="},
		},
	}

	sql := g.CompileSelect(q)
	assert.Equal(t, `select * from "users" where "name" = ?`, sql)
}

func TestCompileSelectEmptyInList(t *testing.T) {
	g := NewMySQL()
	q := &Query{
		Table:  tableUsers,
		Wheres: []Where{{Kind: WhereIn, Connector: ConnectorAnd, Column: "id", Count: 0}},
	}
	assert.Equal(t, "select * from `users` where 0 = 1", g.CompileSelect(q))
}

func TestCompileSelectJoins(t *testing.T) {
	g := NewMySQL()
	q := &Query{
		Table: tableUsers,
		Joins: []Join{
			{Type: JoinInner, Table: "orders", First: "users.id", Operator: "=", Second: "orders.user_id"},
			{Type: JoinLeft, Table: "profiles", First: "users.id", Operator: "=", Second: "profiles.user_id"},
		},
	}

	sql := g.CompileSelect(q)
	expected := "select * from `users`" +
		" inner join `orders` on `users`.`id` = `orders`.`user_id`" +
		" left join `profiles` on `users`.`id` = `profiles`.`user_id`"
	assert.Equal(t, expected, sql)
}

func TestCompileSelectOrderBy(t *testing.T) {
	g := NewPostgres()
	q := &Query{
		Table: tableUsers,
		OrderBys: []OrderBy{
			{Column: colName, Direction: "asc"},
			{Column: "created_at", Direction: "desc"},
		},
	}

	sql := g.CompileSelect(q)
	assert.Equal(t, `select * from "users" order by "name" asc, "created_at" desc`, sql)
}

func TestCompileLimitOffsetPerDialect(t *testing.T) {
	tests := []struct {
		name     string
		grammar  *Grammar
		limit    *int
		offset   *int
		expected string
	}{
		{"mysql both", NewMySQL(), intPtr(10), intPtr(5), " limit 10 offset 5"},
		{"mysql limit only", NewMySQL(), intPtr(10), nil, " limit 10"},
		{"mysql offset only", NewMySQL(), nil, intPtr(5), " offset 5"},
		{"postgres both", NewPostgres(), intPtr(10), intPtr(5), " limit 10 offset 5"},
		{"sqlite both", NewSQLite(), intPtr(10), intPtr(5), " limit 10 offset 5"},
		{"sqlite limit only", NewSQLite(), intPtr(10), nil, " limit 10"},
		{"sqlite offset only", NewSQLite(), nil, intPtr(5), " limit -1 offset 5"},
		{"sqlite neither", NewSQLite(), nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause := tt.grammar.Dialect().CompileLimitOffset(tt.limit, tt.offset)
			assert.Equal(t, tt.expected, clause)
		})
	}
}

func TestCompileInsertSingleRow(t *testing.T) {
	g := NewMySQL()
	sql, bindings := g.CompileInsert(tableUsers, []map[string]any{
		{colName: "Ann", colEmail: "a@x.com"},
	})

	assert.Equal(t, "insert into `users` (`email`, `name`) values (?, ?)", sql)
	assert.Equal(t, []any{"a@x.com", "Ann"}, bindings)
}

func TestCompileInsertMultiRow(t *testing.T) {
	g := NewSQLite()
	sql, bindings := g.CompileInsert(tableUsers, []map[string]any{
		{colName: "Ann", colEmail: "a@x.com"},
		{colName: "Bob", colEmail: "b@x.com"},
	})

	assert.Equal(t, `insert into "users" ("email", "name") values (?, ?), (?, ?)`, sql)
	assert.Equal(t, []any{"a@x.com", "Ann", "b@x.com", "Bob"}, bindings)
	assert.Equal(t, strings.Count(sql, "?"), len(bindings))
}

func TestCompileInsertNoColumns(t *testing.T) {
	mysqlSQL, bindings := NewMySQL().CompileInsert(tableUsers, []map[string]any{{}})
	assert.Equal(t, "insert into `users` () values ()", mysqlSQL)
	assert.Empty(t, bindings)

	sqliteSQL, _ := NewSQLite().CompileInsert(tableUsers, []map[string]any{{}})
	assert.Equal(t, `insert into "users" default values`, sqliteSQL)
}

func TestCompileUpdate(t *testing.T) {
	g := NewMySQL()
	q := &Query{
		Table: tableUsers,
		Wheres: []Where{
			{Kind: WhereBasic, Connector: ConnectorAnd, Column: "id", Operator: "="},
		},
	}

	sql, bindings := g.CompileUpdate(q, map[string]any{colName: "Ann", colEmail: "a@x.com"})
	assert.Equal(t, "update `users` set `email` = ?, `name` = ? where `id` = ?", sql)
	// SET bindings only; the builder appends its WHERE bindings after.
	assert.Equal(t, []any{"a@x.com", "Ann"}, bindings)
}

func TestCompileDelete(t *testing.T) {
	g := NewPostgres()
	q := &Query{
		Table: tableUsers,
		Wheres: []Where{
			{Kind: WhereBasic, Connector: ConnectorAnd, Column: "id", Operator: "="},
		},
	}
	assert.Equal(t, `delete from "users" where "id" = ?`, g.CompileDelete(q))
}

func TestCompileDeleteWithoutWheres(t *testing.T) {
	g := NewMySQL()
	assert.Equal(t, "delete from `users`", g.CompileDelete(&Query{Table: tableUsers}))
}

func TestCompileSavepoints(t *testing.T) {
	for _, g := range []*Grammar{NewMySQL(), NewPostgres(), NewSQLite()} {
		require.Equal(t, "SAVEPOINT sp1", g.CompileSavepoint("sp1"))
		require.Equal(t, "RELEASE SAVEPOINT sp1", g.CompileSavepointRelease("sp1"))
		require.Equal(t, "ROLLBACK TO SAVEPOINT sp1", g.CompileSavepointRollback("sp1"))
	}
}

func TestPlaceholderCountMatchesBindingsContract(t *testing.T) {
	g := NewMySQL()
	q := &Query{
		Table: tableUsers,
		Wheres: []Where{
			{Kind: WhereBasic, Connector: ConnectorAnd, Column: "a", Operator: "="},
			{Kind: WhereIn, Connector: ConnectorAnd, Column: "b", Count: 4},
			{Kind: WhereNull, Connector: ConnectorAnd, Column: "c"},
			{Kind: WhereBasic, Connector: ConnectorOr, Column: "d", Operator: "<"},
		},
	}

	sql := g.CompileSelect(q)
	assert.Equal(t, 6, strings.Count(sql, "?"))
}
