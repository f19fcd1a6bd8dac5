package database

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fluentdb/fluentdb/cache"
	"github.com/fluentdb/fluentdb/database/grammar"
)

// QueryBuilder is the fluent, stateful accumulator of query intent. Clause
// methods append to the component set and push binding values in the same
// call, which is what keeps the binding list in placeholder order; terminal
// methods compile SQL through the connection's grammar and execute it.
//
// A builder is cheap to create, one per query scope. Reuse for an unrelated
// query requires an explicit Reset.
type QueryBuilder struct {
	conn     *Connection
	query    grammar.Query
	bindings []any

	cache    *cache.Store
	cacheTTL time.Duration
}

// NewQueryBuilder creates a builder bound to conn.
func NewQueryBuilder(conn *Connection) *QueryBuilder {
	return &QueryBuilder{conn: conn}
}

// WithCache attaches the external cache collaborator used by Remember.
func (qb *QueryBuilder) WithCache(store *cache.Store) *QueryBuilder {
	qb.cache = store
	return qb
}

// Remember enables caching for the next Get call with the given TTL. The
// cache key is derived from the compiled SQL and the serialized bindings;
// the real execution only happens on a miss.
func (qb *QueryBuilder) Remember(ttl time.Duration) *QueryBuilder {
	qb.cacheTTL = ttl
	return qb
}

// Table sets the target relation.
func (qb *QueryBuilder) Table(name string) *QueryBuilder {
	qb.query.Table = name
	return qb
}

// Select replaces the select list. The default is "*".
func (qb *QueryBuilder) Select(columns ...string) *QueryBuilder {
	qb.query.Selects = columns
	return qb
}

// Where appends a basic and-predicate. The two-argument form implies "=":
//
//	qb.Where("age", 18)        // age = 18
//	qb.Where("age", ">", 18)   // age > 18
func (qb *QueryBuilder) Where(column string, args ...any) *QueryBuilder {
	return qb.addWhere(grammar.ConnectorAnd, column, args)
}

// OrWhere appends a basic or-predicate. Argument forms match Where.
func (qb *QueryBuilder) OrWhere(column string, args ...any) *QueryBuilder {
	return qb.addWhere(grammar.ConnectorOr, column, args)
}

func (qb *QueryBuilder) addWhere(connector, column string, args []any) *QueryBuilder {
	var operator string
	var value any

	switch len(args) {
	case 1:
		operator, value = "=", args[0]
	case 2:
		op, ok := args[0].(string)
		if !ok {
			return qb
		}
		operator, value = op, args[1]
	default:
		return qb
	}

	qb.query.Wheres = append(qb.query.Wheres, grammar.Where{
		Kind:      grammar.WhereBasic,
		Connector: connector,
		Column:    column,
		Operator:  operator,
	})
	qb.bindings = append(qb.bindings, value)
	return qb
}

// WhereIn appends an in-predicate; all values are pushed onto the binding
// list in order.
func (qb *QueryBuilder) WhereIn(column string, values ...any) *QueryBuilder {
	qb.query.Wheres = append(qb.query.Wheres, grammar.Where{
		Kind:      grammar.WhereIn,
		Connector: grammar.ConnectorAnd,
		Column:    column,
		Count:     len(values),
	})
	qb.bindings = append(qb.bindings, values...)
	return qb
}

// WhereNull appends an is-null predicate. No binding is pushed.
func (qb *QueryBuilder) WhereNull(column string) *QueryBuilder {
	qb.query.Wheres = append(qb.query.Wheres, grammar.Where{
		Kind:      grammar.WhereNull,
		Connector: grammar.ConnectorAnd,
		Column:    column,
	})
	return qb
}

// WhereNotNull appends an is-not-null predicate. No binding is pushed.
func (qb *QueryBuilder) WhereNotNull(column string) *QueryBuilder {
	qb.query.Wheres = append(qb.query.Wheres, grammar.Where{
		Kind:      grammar.WhereNotNull,
		Connector: grammar.ConnectorAnd,
		Column:    column,
	})
	return qb
}

// Join appends an inner join. The three-argument form implies "=":
//
//	qb.Join("orders", "users.id", "orders.user_id")
//	qb.Join("orders", "users.id", "=", "orders.user_id")
func (qb *QueryBuilder) Join(table, first string, rest ...string) *QueryBuilder {
	return qb.addJoin(grammar.JoinInner, table, first, rest)
}

// LeftJoin appends a left join. Argument forms match Join.
func (qb *QueryBuilder) LeftJoin(table, first string, rest ...string) *QueryBuilder {
	return qb.addJoin(grammar.JoinLeft, table, first, rest)
}

func (qb *QueryBuilder) addJoin(kind, table, first string, rest []string) *QueryBuilder {
	var operator, second string

	switch len(rest) {
	case 1:
		operator, second = "=", rest[0]
	case 2:
		operator, second = rest[0], rest[1]
	default:
		return qb
	}

	qb.query.Joins = append(qb.query.Joins, grammar.Join{
		Type:     kind,
		Table:    table,
		First:    first,
		Operator: operator,
		Second:   second,
	})
	return qb
}

// OrderBy appends an ordering term. The direction is normalized
// case-insensitively to asc/desc; anything unrecognized becomes asc.
func (qb *QueryBuilder) OrderBy(column string, direction ...string) *QueryBuilder {
	dir := "asc"
	if len(direction) > 0 && strings.EqualFold(direction[0], "desc") {
		dir = "desc"
	}

	qb.query.OrderBys = append(qb.query.OrderBys, grammar.OrderBy{
		Column:    column,
		Direction: dir,
	})
	return qb
}

// Limit sets the maximum number of rows returned.
func (qb *QueryBuilder) Limit(n int) *QueryBuilder {
	qb.query.Limit = &n
	return qb
}

// Offset sets the number of rows skipped.
func (qb *QueryBuilder) Offset(n int) *QueryBuilder {
	qb.query.Offset = &n
	return qb
}

// ToSQL compiles the accumulated state into a SELECT statement and the
// ordered binding list without executing anything.
func (qb *QueryBuilder) ToSQL() (string, []any) {
	return qb.conn.Grammar().CompileSelect(&qb.query), append([]any(nil), qb.bindings...)
}

// Get compiles and executes a SELECT, returning all matching rows. When a
// cache collaborator is attached and Remember was called, the result is
// served from the cache and the execution callback only runs on a miss.
func (qb *QueryBuilder) Get(ctx context.Context) ([]Row, error) {
	query, bindings := qb.ToSQL()

	if qb.cache != nil && qb.cacheTTL > 0 {
		ttl := qb.cacheTTL
		qb.cacheTTL = 0

		payload, err := qb.cache.Remember(ctx, cache.Key(query, bindings), ttl, func(ctx context.Context) ([]byte, error) {
			rows, err := qb.conn.Query(ctx, query, bindings...)
			if err != nil {
				return nil, err
			}
			return cache.EncodeRows(rows)
		})
		if err != nil {
			return nil, err
		}

		return decodeRows(payload)
	}

	return qb.conn.Query(ctx, query, bindings...)
}

// First limits the query to one row and returns it, or nil when the result
// set is empty. An empty result is not an error.
func (qb *QueryBuilder) First(ctx context.Context) (Row, error) {
	rows, err := qb.Limit(1).Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count executes a count aggregate over the accumulated predicates and
// returns 0 when no rows match. The builder's select, limit, and offset
// state is restored afterwards, so a subsequent Get on the same builder
// observes the state from before the Count.
func (qb *QueryBuilder) Count(ctx context.Context) (int64, error) {
	prevSelects := qb.query.Selects
	prevLimit := qb.query.Limit
	prevOffset := qb.query.Offset

	qb.query.Selects = []string{"count(*) as aggregate"}
	qb.query.Limit = nil
	qb.query.Offset = nil

	rows, err := qb.Get(ctx)

	qb.query.Selects = prevSelects
	qb.query.Limit = prevLimit
	qb.query.Offset = prevOffset

	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	return toInt64(rows[0]["aggregate"]), nil
}

// Insert compiles a multi-row INSERT and executes it, reporting success.
// An empty payload is a no-op returning false without issuing a statement.
func (qb *QueryBuilder) Insert(ctx context.Context, rows ...Row) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}

	values := make([]map[string]any, len(rows))
	for i, row := range rows {
		values[i] = row
	}

	query, bindings := qb.conn.Grammar().CompileInsert(qb.query.Table, values)
	if _, err := qb.conn.Exec(ctx, query, bindings...); err != nil {
		return false, err
	}
	return true, nil
}

// Update compiles an UPDATE restricted by the accumulated WHERE predicates
// and returns the affected-row count. The update-value bindings precede the
// accumulated WHERE bindings. An empty payload is a no-op returning 0.
func (qb *QueryBuilder) Update(ctx context.Context, values Row) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}

	query, setBindings := qb.conn.Grammar().CompileUpdate(&qb.query, values)
	bindings := append(setBindings, qb.bindings...)

	return qb.conn.Exec(ctx, query, bindings...)
}

// Delete compiles a DELETE restricted by the accumulated WHERE predicates
// and returns the affected-row count.
func (qb *QueryBuilder) Delete(ctx context.Context) (int64, error) {
	query := qb.conn.Grammar().CompileDelete(&qb.query)
	return qb.conn.Exec(ctx, query, qb.bindings...)
}

// Reset clears all accumulated clause state: selects back to "*", wheres,
// bindings, joins, and orderings cleared, limit and offset unset. The target
// table and attached collaborators are kept.
func (qb *QueryBuilder) Reset() *QueryBuilder {
	qb.query.Selects = nil
	qb.query.Wheres = nil
	qb.query.Joins = nil
	qb.query.OrderBys = nil
	qb.query.Limit = nil
	qb.query.Offset = nil
	qb.bindings = nil
	qb.cacheTTL = 0
	return qb
}

// toInt64 normalizes the aggregate column value across drivers, which
// variously return integers, decimals, or text.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func decodeRows(payload []byte) ([]Row, error) {
	raw, err := cache.DecodeRows(payload)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(raw))
	for i, m := range raw {
		rows[i] = Row(m)
	}
	return rows, nil
}
