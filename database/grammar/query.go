package grammar

// WhereKind tags the shape of a single WHERE predicate.
type WhereKind string

// Supported predicate kinds.
const (
	WhereBasic   WhereKind = "basic"
	WhereIn      WhereKind = "in"
	WhereNull    WhereKind = "null"
	WhereNotNull WhereKind = "not_null"
)

// Boolean connectors between predicates. The connector recorded for the
// first predicate is ignored and rendered as the leading "where".
const (
	ConnectorAnd = "and"
	ConnectorOr  = "or"
)

// Join types.
const (
	JoinInner = "inner"
	JoinLeft  = "left"
)

// Where describes one predicate. For WhereBasic, Operator is a comparison
// operator and exactly one placeholder is rendered. For WhereIn, Count is
// the number of placeholders. Null kinds render no placeholder.
type Where struct {
	Kind      WhereKind
	Connector string
	Column    string
	Operator  string
	Count     int
}

// Join describes one join clause.
type Join struct {
	Type     string
	Table    string
	First    string
	Operator string
	Second   string
}

// OrderBy describes one ordering term. Direction is "asc" or "desc".
type OrderBy struct {
	Column    string
	Direction string
}

// Query is the normalized, dialect-agnostic component set a query builder
// hands to a grammar. It carries no binding values; those travel separately,
// in placeholder order, from the builder to the connection.
type Query struct {
	Table    string
	Selects  []string
	Wheres   []Where
	Joins    []Join
	OrderBys []OrderBy
	Limit    *int
	Offset   *int
}
