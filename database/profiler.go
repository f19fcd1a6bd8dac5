package database

// Profiler is an optional collaborator notified around every executed
// statement. It is a pure side channel: implementations must not assume
// their return influences compilation or control flow.
//
// QueryStart receives a unique event id, the SQL text, and the ordered
// bindings before execution; QueryEnd receives the same id with the
// affected-row count (0 for reads and failures) and the execution error,
// if any, after.
type Profiler interface {
	QueryStart(id, query string, bindings []any)
	QueryEnd(id string, rowsAffected int64, err error)
}
