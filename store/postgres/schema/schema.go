// Package schema embeds and applies the bootstrap DDL for the four
// currency post-processor tables, modeled on the teacher's
// schema/bootstrap package: one file per table, applied in alphabetical
// order, each inside its own transaction.
package schema

import (
	"context"
	"embed"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ajs/poefixer/internal/errkit"
)

//go:embed sqldata/*.sql
var sqlFiles embed.FS

// Apply connects a single throwaway connection from pool and executes
// every embedded *.sql file in its own transaction. "relation already
// exists" is not special-cased here: the DDL itself uses "IF NOT EXISTS"
// so re-running Apply against an already-bootstrapped database is a
// no-op, matching spec.md §7's "schema already exists" swallow.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return errkit.Wrap(err, "failed to acquire connection for schema bootstrap")
	}
	defer conn.Release()

	files, err := sortedSQLFiles()
	if err != nil {
		return errkit.Wrap(err, "failed to read embedded schema files")
	}

	for _, name := range files {
		if err := applyFile(ctx, conn.Conn(), name); err != nil {
			return errkit.Wrap(err, "failed to apply schema file").WithField("file", name)
		}
	}
	return nil
}

func sortedSQLFiles() ([]string, error) {
	entries, err := sqlFiles.ReadDir("sqldata")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func applyFile(ctx context.Context, conn *pgx.Conn, name string) error {
	content, err := sqlFiles.ReadFile("sqldata/" + name)
	if err != nil {
		return errkit.Wrap(err, "failed to read schema file")
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return errkit.Wrap(err, "failed to begin schema transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return errkit.Wrap(err, "failed to execute schema file")
	}

	return tx.Commit(ctx)
}
