package grammar

import "strconv"

// PostgresDialect implements Dialect for PostgreSQL. Identifiers are quoted
// with double quotes; limit/offset render as independent clauses. Compiled
// statements keep "?" placeholders; the postgresql connection layer rebinds
// them to the $N form the driver expects.
type PostgresDialect struct{}

// NewPostgres returns a Grammar configured for PostgreSQL.
func NewPostgres() *Grammar {
	return New(PostgresDialect{})
}

// Name returns the dialect identifier.
func (PostgresDialect) Name() string {
	return "pgsql"
}

// QuoteRune returns the double-quote identifier quote.
func (PostgresDialect) QuoteRune() rune {
	return '"'
}

// CompileLimitOffset renders independent "limit N" and "offset N" clauses.
func (PostgresDialect) CompileLimitOffset(limit, offset *int) string {
	var clause string
	if limit != nil {
		clause += " limit " + strconv.Itoa(*limit)
	}
	if offset != nil {
		clause += " offset " + strconv.Itoa(*offset)
	}
	return clause
}

// CompileInsertNoValues renders the standard DEFAULT VALUES form.
func (PostgresDialect) CompileInsertNoValues(wrappedTable string) string {
	return "insert into " + wrappedTable + " default values"
}

func (PostgresDialect) CompileSavepoint(name string) string {
	return "SAVEPOINT " + name
}

func (PostgresDialect) CompileSavepointRelease(name string) string {
	return "RELEASE SAVEPOINT " + name
}

func (PostgresDialect) CompileSavepointRollback(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}
