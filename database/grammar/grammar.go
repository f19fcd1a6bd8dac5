// Package grammar compiles normalized query components into dialect-specific
// SQL text. One Grammar compiler is shared by all backends; the parts that
// genuinely differ between dialects (identifier quote character, limit/offset
// rendering, the empty-insert form, savepoint statements) live behind the
// Dialect strategy interface.
package grammar

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Dialect captures the per-backend SQL divergences injected into a Grammar.
type Dialect interface {
	// Name returns the dialect identifier ("mysql", "pgsql", "sqlite").
	Name() string

	// QuoteRune returns the identifier quote character.
	QuoteRune() rune

	// CompileLimitOffset renders the pagination clause(s), including the
	// leading space, or "" when neither bound is set.
	CompileLimitOffset(limit, offset *int) string

	// CompileInsertNoValues renders a full INSERT statement for a row with
	// no columns. wrappedTable is already quoted.
	CompileInsertNoValues(wrappedTable string) string

	// Savepoint statements for nested transaction emulation.
	CompileSavepoint(name string) string
	CompileSavepointRelease(name string) string
	CompileSavepointRollback(name string) string
}

// Grammar translates a Query into SQL text for one dialect. It is stateless
// and safe for concurrent use.
type Grammar struct {
	dialect Dialect
}

// New returns a Grammar for the provided dialect.
func New(dialect Dialect) *Grammar {
	return &Grammar{dialect: dialect}
}

// Dialect returns the dialect this grammar compiles for.
func (g *Grammar) Dialect() Dialect {
	return g.dialect
}

// functionPattern recognizes the aggregate/scalar calls that pass through
// select compilation unwrapped. A column literally named e.g. "upper_bound"
// is not matched because the parenthesis is required.
var functionPattern = regexp.MustCompile(`(?i)^\s*(count|sum|avg|min|max|upper|lower)\s*\(`)

// aliasPattern recognizes "expr AS alias" select expressions.
var aliasPattern = regexp.MustCompile(`(?i)\s+as\s+`)

// Wrap quotes an identifier with the dialect's quote character. Dotted paths
// are wrapped segment by segment; the literal "*" is never wrapped.
func (g *Grammar) Wrap(value string) string {
	if value == "*" {
		return value
	}

	segments := strings.Split(value, ".")
	for i, segment := range segments {
		segments[i] = g.wrapSegment(segment)
	}
	return strings.Join(segments, ".")
}

func (g *Grammar) wrapSegment(segment string) string {
	if segment == "*" {
		return segment
	}
	q := string(g.dialect.QuoteRune())
	return q + segment + q
}

// wrapSelect handles one select expression. Function calls and aliased
// expressions pass through untouched; plain columns are wrapped.
func (g *Grammar) wrapSelect(expr string) string {
	if functionPattern.MatchString(expr) || aliasPattern.MatchString(expr) {
		return expr
	}
	return g.Wrap(expr)
}

// columnize renders a comma-separated select list.
func (g *Grammar) columnize(columns []string) string {
	return strings.Join(lo.Map(columns, func(c string, _ int) string {
		return g.wrapSelect(c)
	}), ", ")
}

// CompileSelect renders a full SELECT statement for q.
func (g *Grammar) CompileSelect(q *Query) string {
	selects := q.Selects
	if len(selects) == 0 {
		selects = []string{"*"}
	}

	var sb strings.Builder
	sb.WriteString("select ")
	sb.WriteString(g.columnize(selects))
	sb.WriteString(" from ")
	sb.WriteString(g.Wrap(q.Table))
	sb.WriteString(g.compileJoins(q.Joins))
	sb.WriteString(g.compileWheres(q.Wheres))
	sb.WriteString(g.compileOrderBys(q.OrderBys))
	sb.WriteString(g.dialect.CompileLimitOffset(q.Limit, q.Offset))

	return sb.String()
}

// CompileInsert renders a multi-row INSERT for the given rows and returns the
// statement together with the row values flattened in column order per row.
// Column order is the sorted key set of the first row; rows missing a column
// bind nil for it. The caller guarantees rows is non-empty.
func (g *Grammar) CompileInsert(table string, rows []map[string]any) (string, []any) {
	columns := sortedKeys(rows[0])
	if len(columns) == 0 {
		return g.dialect.CompileInsertNoValues(g.Wrap(table)), nil
	}

	group := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	groups := lo.Map(rows, func(_ map[string]any, _ int) string { return group })

	bindings := make([]any, 0, len(rows)*len(columns))
	for _, row := range rows {
		bindings = append(bindings, valuesByKeyOrder(row, columns)...)
	}

	sql := fmt.Sprintf("insert into %s (%s) values %s",
		g.Wrap(table),
		strings.Join(lo.Map(columns, func(c string, _ int) string { return g.Wrap(c) }), ", "),
		strings.Join(groups, ", "))

	return sql, bindings
}

// CompileUpdate renders an UPDATE restricted by q's WHERE predicates and
// returns the statement plus the SET value bindings. The caller appends its
// accumulated WHERE bindings after these, preserving placeholder order.
func (g *Grammar) CompileUpdate(q *Query, values map[string]any) (string, []any) {
	columns := sortedKeys(values)

	assignments := lo.Map(columns, func(c string, _ int) string {
		return g.Wrap(c) + " = ?"
	})

	sql := fmt.Sprintf("update %s set %s%s",
		g.Wrap(q.Table),
		strings.Join(assignments, ", "),
		g.compileWheres(q.Wheres))

	return sql, valuesByKeyOrder(values, columns)
}

// CompileDelete renders a DELETE restricted by q's WHERE predicates.
func (g *Grammar) CompileDelete(q *Query) string {
	return "delete from " + g.Wrap(q.Table) + g.compileWheres(q.Wheres)
}

// compileWheres joins predicates with their connectors. The first predicate's
// connector is always rendered as the leading "where", even when the chain
// was begun with an or-predicate.
func (g *Grammar) compileWheres(wheres []Where) string {
	if len(wheres) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, w := range wheres {
		if i == 0 {
			sb.WriteString(" where ")
		} else {
			connector := w.Connector
			if connector != ConnectorOr {
				connector = ConnectorAnd
			}
			sb.WriteString(" " + connector + " ")
		}
		sb.WriteString(g.compileWhere(w))
	}
	return sb.String()
}

func (g *Grammar) compileWhere(w Where) string {
	switch w.Kind {
	case WhereIn:
		if w.Count == 0 {
			// An empty IN list can never match.
			return "0 = 1"
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", w.Count), ", ")
		return g.Wrap(w.Column) + " in (" + placeholders + ")"
	case WhereNull:
		return g.Wrap(w.Column) + " is null"
	case WhereNotNull:
		return g.Wrap(w.Column) + " is not null"
	default:
		return g.Wrap(w.Column) + " " + w.Operator + " ?"
	}
}

func (g *Grammar) compileJoins(joins []Join) string {
	var sb strings.Builder
	for _, j := range joins {
		kind := "inner join"
		if j.Type == JoinLeft {
			kind = "left join"
		}
		sb.WriteString(fmt.Sprintf(" %s %s on %s %s %s",
			kind, g.Wrap(j.Table), g.Wrap(j.First), j.Operator, g.Wrap(j.Second)))
	}
	return sb.String()
}

func (g *Grammar) compileOrderBys(orderBys []OrderBy) string {
	if len(orderBys) == 0 {
		return ""
	}

	terms := lo.Map(orderBys, func(o OrderBy, _ int) string {
		return g.Wrap(o.Column) + " " + o.Direction
	})
	return " order by " + strings.Join(terms, ", ")
}

// CompileSavepoint renders the statement creating a named savepoint.
func (g *Grammar) CompileSavepoint(name string) string {
	return g.dialect.CompileSavepoint(name)
}

// CompileSavepointRelease renders the statement releasing a savepoint.
func (g *Grammar) CompileSavepointRelease(name string) string {
	return g.dialect.CompileSavepointRelease(name)
}

// CompileSavepointRollback renders the statement rolling back to a savepoint.
func (g *Grammar) CompileSavepointRollback(name string) string {
	return g.dialect.CompileSavepointRollback(name)
}

// sortedKeys returns a deterministically ordered slice of keys from the provided map.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valuesByKeyOrder returns a slice of values from m following the order specified in keys.
func valuesByKeyOrder(m map[string]any, keys []string) []any {
	vals := make([]any, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, m[k])
	}
	return vals
}
