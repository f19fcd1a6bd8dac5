package grammar

import "strconv"

// SQLiteDialect implements Dialect for SQLite. Identifiers are quoted with
// double quotes. The engine requires a limit token whenever offset is used,
// so pagination renders as one combined clause with "limit -1" standing in
// when only an offset is present.
type SQLiteDialect struct{}

// NewSQLite returns a Grammar configured for SQLite.
func NewSQLite() *Grammar {
	return New(SQLiteDialect{})
}

// Name returns the dialect identifier.
func (SQLiteDialect) Name() string {
	return "sqlite"
}

// QuoteRune returns the double-quote identifier quote.
func (SQLiteDialect) QuoteRune() rune {
	return '"'
}

// CompileLimitOffset renders the combined sqlite pagination clause.
func (SQLiteDialect) CompileLimitOffset(limit, offset *int) string {
	switch {
	case limit != nil && offset != nil:
		return " limit " + strconv.Itoa(*limit) + " offset " + strconv.Itoa(*offset)
	case limit != nil:
		return " limit " + strconv.Itoa(*limit)
	case offset != nil:
		return " limit -1 offset " + strconv.Itoa(*offset)
	default:
		return ""
	}
}

// CompileInsertNoValues renders the DEFAULT VALUES form.
func (SQLiteDialect) CompileInsertNoValues(wrappedTable string) string {
	return "insert into " + wrappedTable + " default values"
}

func (SQLiteDialect) CompileSavepoint(name string) string {
	return "SAVEPOINT " + name
}

func (SQLiteDialect) CompileSavepointRelease(name string) string {
	return "RELEASE SAVEPOINT " + name
}

func (SQLiteDialect) CompileSavepointRollback(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}
