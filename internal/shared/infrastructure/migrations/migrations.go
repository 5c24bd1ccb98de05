// Package migrations applies the embedded schema for each database driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/memoryplanner/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationFS embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Run applies every pending .up.sql file for the connection's driver in
// lexical order and returns the versions it applied.
func Run(ctx context.Context, conn database.Connection) ([]string, error) {
	dir := string(conn.Driver())
	files, err := upFiles(dir)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, file := range files {
		version := strings.TrimSuffix(file, ".up.sql")
		if applied[version] {
			continue
		}

		body, err := migrationFS.ReadFile(dir + "/" + file)
		if err != nil {
			return ran, fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		uow := database.NewUnitOfWork(conn)
		txCtx, err := uow.Begin(ctx)
		if err != nil {
			return ran, err
		}
		exec := database.ExecutorFromContext(txCtx, conn)
		if _, err := exec.Exec(txCtx, string(body)); err != nil {
			_ = uow.Rollback(txCtx)
			return ran, fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
		if _, err := exec.Exec(txCtx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`,
			version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = uow.Rollback(txCtx)
			return ran, fmt.Errorf("failed to record migration %s: %w", file, err)
		}
		if err := uow.Commit(txCtx); err != nil {
			return ran, err
		}
		ran = append(ran, version)
	}
	return ran, nil
}

func upFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func appliedVersions(ctx context.Context, conn database.Connection) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
