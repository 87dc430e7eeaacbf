package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	issuance "github.com/goliatone/go-issuance"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const migrationsRoot = "data/sql/migrations"

// Source returns the embedded issuance migrations for dialect. Postgres files
// sit at the root of the tree, sqlite keeps its own copies under sqlite/.
func Source(dialect string) (fs.FS, error) {
	tree, err := fs.Sub(issuance.GetMigrationsFS(), migrationsRoot)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", migrationsRoot, err)
	}

	switch strings.TrimSpace(strings.ToLower(dialect)) {
	case DialectPostgres:
	case DialectSQLite:
		if tree, err = fs.Sub(tree, "sqlite"); err != nil {
			return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
		}
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}

	matches, err := fs.Glob(tree, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: glob %s: %w", dialect, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("migrations: %s filesystem has no *.up.sql files", dialect)
	}
	return tree, nil
}

// Register hands the migrations for dialect to registerFn.
func Register(ctx context.Context, dialect string, registerFn func(context.Context, fs.FS) error) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}
	tree, err := Source(dialect)
	if err != nil {
		return err
	}
	if err := registerFn(ctx, tree); err != nil {
		return fmt.Errorf("migrations: register %s: %w", dialect, err)
	}
	return nil
}
