// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories. All tables carry tenant_id; every query filters on it.
package catalog_repo

import (
	"github.com/Masterminds/squirrel"
)

// builder returns a squirrel builder with PostgreSQL placeholder format.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
