package grammar

import "strconv"

// MySQLDialect implements Dialect for MySQL and MariaDB. Identifiers are
// quoted with backticks and limit/offset render as independent clauses.
type MySQLDialect struct{}

// NewMySQL returns a Grammar configured for MySQL.
func NewMySQL() *Grammar {
	return New(MySQLDialect{})
}

// Name returns the dialect identifier.
func (MySQLDialect) Name() string {
	return "mysql"
}

// QuoteRune returns the backtick identifier quote.
func (MySQLDialect) QuoteRune() rune {
	return '`'
}

// CompileLimitOffset renders independent "limit N" and "offset N" clauses.
func (MySQLDialect) CompileLimitOffset(limit, offset *int) string {
	var clause string
	if limit != nil {
		clause += " limit " + strconv.Itoa(*limit)
	}
	if offset != nil {
		clause += " offset " + strconv.Itoa(*offset)
	}
	return clause
}

// CompileInsertNoValues renders MySQL's explicit empty column/value lists.
func (MySQLDialect) CompileInsertNoValues(wrappedTable string) string {
	return "insert into " + wrappedTable + " () values ()"
}

func (MySQLDialect) CompileSavepoint(name string) string {
	return "SAVEPOINT " + name
}

func (MySQLDialect) CompileSavepointRelease(name string) string {
	return "RELEASE SAVEPOINT " + name
}

func (MySQLDialect) CompileSavepointRollback(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}
