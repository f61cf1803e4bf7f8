package store

import (
	"context"
	"os"
	"testing"
	"time"
)

// openTestPostgres connects to DATABASE_URL or skips the test.
func openTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping postgres store tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := OpenPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open postgres store: %v", err)
	}
	t.Cleanup(s.Close)

	if _, err := s.pool.Exec(ctx, `DELETE FROM suburb_search_cache WHERE cache_key = $1`, "parramatta|NSW"); err != nil {
		t.Fatalf("failed to reset cache row: %v", err)
	}
	return s
}

func TestPostgresStore(t *testing.T) {
	s := openTestPostgres(t)
	exerciseCache(t, s)

	if err := s.Health(context.Background()); err != nil {
		t.Fatalf("unexpected health error: %v", err)
	}
}

func TestPostgresEnsureSchemaIsIdempotent(t *testing.T) {
	s := openTestPostgres(t)
	for i := 0; i < 2; i++ {
		if err := s.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
	}
}
