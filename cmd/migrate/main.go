// migrate applies every pending SQL file under migrations/ in version order.
// It records applied versions in schema_migrations with a checksum, refuses
// to re-run a file whose content changed, and takes an advisory lock so two
// migrators cannot run concurrently.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const migrationsDir = "migrations"

// migratorLockKey is an arbitrary advisory lock id shared by all migrator
// instances pointed at the same database.
const migratorLockKey = 4418207

func main() {
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := connectDB(ctx, url)
	defer pool.Close()

	conn := acquireLock(ctx, pool)
	defer conn.Release()

	setupSchemaMigrations(ctx, pool)

	for _, m := range discoverMigrations() {
		applyMigration(ctx, pool, m)
	}

	log.Println("[DONE] All migrations processed.")
}

func connectDB(ctx context.Context, url string) *pgxpool.Pool {
	connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Fatalf("[CONNECT] failed to create pool: %v", err)
	}

	if err := pool.Ping(connCtx); err != nil {
		log.Fatalf("[CONNECT] failed to ping database: %v", err)
	}

	log.Println("[CONNECT] success")
	return pool
}

func acquireLock(ctx context.Context, pool *pgxpool.Pool) *pgxpool.Conn {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		log.Fatalf("[LOCK] failed to acquire connection for lock: %v", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migratorLockKey).Scan(&locked); err != nil {
		log.Fatalf("[LOCK] failed to query advisory lock: %v", err)
	}
	if !locked {
		log.Fatalf("[LOCK] failed: another migrator is currently running")
	}

	log.Println("[LOCK] success")
	return conn
}

func setupSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) {
	query := `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := pool.Exec(ctx, query); err != nil {
		log.Fatalf("[ERROR] failed to create schema_migrations table: %v", err)
	}
}

type migration struct {
	version  string
	filename string
}

// discoverMigrations lists migrations/*.sql sorted by filename. Filenames
// follow NNN_description.sql; the NNN prefix is the recorded version.
func discoverMigrations() []migration {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		log.Fatalf("[DISCOVER] failed to read migrations directory: %v", err)
	}

	seen := make(map[string]bool)
	var migrations []migration

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		filename := entry.Name()
		parts := strings.SplitN(filename, "_", 2)
		if len(parts) < 2 {
			log.Fatalf("[DISCOVER] invalid migration filename: %s. Expected format NNN_description.sql", filename)
		}
		version := parts[0]

		if seen[version] {
			log.Fatalf("[DISCOVER] duplicate version found: %s", version)
		}
		seen[version] = true

		migrations = append(migrations, migration{version: version, filename: filename})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].filename < migrations[j].filename })
	return migrations
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, m migration) {
	sqlBytes, err := os.ReadFile(filepath.Join(migrationsDir, m.filename))
	if err != nil {
		log.Fatalf("[ERROR] failed to read migration file %s: %v", m.filename, err)
	}
	hash := sha256.Sum256(sqlBytes)
	checksum := hex.EncodeToString(hash[:])

	var existingChecksum string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", m.version).Scan(&existingChecksum)
	switch {
	case err == nil:
		if existingChecksum == checksum {
			log.Printf("[SKIP] %s", m.filename)
			return
		}
		log.Fatalf("[ERROR] Checksum mismatch for %s. Recorded %s, got %s", m.filename, existingChecksum, checksum)
	case errors.Is(err, pgx.ErrNoRows):
		// Not applied yet.
	default:
		log.Fatalf("[ERROR] failed to query schema_migrations for %s: %v", m.filename, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("[ERROR] failed to begin transaction for %s: %v", m.filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		log.Fatalf("[ERROR] failed to execute migration %s: %v", m.filename, err)
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		m.version, m.filename, checksum,
	); err != nil {
		log.Fatalf("[ERROR] failed to insert migration record for %s: %v", m.filename, err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("[ERROR] failed to commit transaction for %s: %v", m.filename, err)
	}

	log.Printf("[APPLY] %s", m.filename)
}
