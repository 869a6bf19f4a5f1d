package visibility

import "github.com/uptrace/bun"

// Apply restricts a select query on a soft-deletable table to the rows
// admitted by scope. The table must expose a nullable deleted_at column.
func Apply(q *bun.SelectQuery, scope Scope) *bun.SelectQuery {
	if q == nil {
		return q
	}
	switch scope {
	case IncludeDeleted:
		return q
	case OnlyDeleted:
		return q.Where("?TableAlias.deleted_at IS NOT NULL")
	default:
		return q.Where("?TableAlias.deleted_at IS NULL")
	}
}
