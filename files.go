package auth

import (
	"context"
	"embed"

	"github.com/uptrace/bun"
)

//go:embed data/sql/schema.sql
var schemaFS embed.FS

// GetSchemaFS returns the embedded SQL schema for this package
func GetSchemaFS() embed.FS {
	return schemaFS
}

// BootstrapSchema applies the embedded schema. Statements are idempotent,
// running it on an initialized database is a no-op.
func BootstrapSchema(ctx context.Context, db *bun.DB) error {
	ddl, err := schemaFS.ReadFile("data/sql/schema.sql")
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, string(ddl))
	return err
}
