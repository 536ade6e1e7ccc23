package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationLockID = 7462839

type migration struct {
	version  string
	filename string
	sql      string
	checksum string
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	seen := make(map[string]bool)
	var out []migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		version, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("invalid migration filename %s, expected NNN_description.sql", name)
		}
		if seen[version] {
			return nil, fmt.Errorf("duplicate migration version %s", version)
		}
		seen[version] = true

		b, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sum := sha256.Sum256(b)
		out = append(out, migration{version: version, filename: name, sql: string(b), checksum: hex.EncodeToString(sum[:])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].filename < out[j].filename })
	return out, nil
}

// Migrate applies the embedded schema files that were not applied yet.
// A file whose checksum changed after being applied is an error.
func Migrate(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	ms, err := loadMigrations()
	if err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `select pg_advisory_lock($1)`, migrationLockID); err != nil {
		return fmt.Errorf("migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `select pg_advisory_unlock($1)`, migrationLockID)
	}()

	const ddl = `
create table if not exists schema_migrations (
	version    text primary key,
	filename   text not null,
	checksum   text not null,
	applied_at timestamptz not null default now()
)`
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range ms {
		var existing string
		err := conn.QueryRowContext(ctx, `select checksum from schema_migrations where version=$1`, m.version).Scan(&existing)
		switch {
		case err == nil:
			if existing != m.checksum {
				return fmt.Errorf("checksum mismatch for %s", m.filename)
			}
			log.Debug("migration already applied", zap.String("file", m.filename))
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("query schema_migrations for %s: %w", m.filename, err)
		}

		if err := apply(ctx, conn, m); err != nil {
			return err
		}
		log.Info("migration applied", zap.String("file", m.filename))
	}
	return nil
}

func apply(ctx context.Context, conn *sql.Conn, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", m.filename, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("execute migration %s: %w", m.filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`insert into schema_migrations (version, filename, checksum) values ($1,$2,$3)`,
		m.version, m.filename, m.checksum); err != nil {
		return fmt.Errorf("record migration %s: %w", m.filename, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", m.filename, err)
	}
	return nil
}
