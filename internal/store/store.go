// Package store holds the Postgres repositories. Queries are built with
// squirrel and scanned with pgxscan; every table lives in the catcare
// schema.
package store

import sq "github.com/Masterminds/squirrel"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}
