package db

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestConnectRequiresDSN(t *testing.T) {
	if _, err := Connect(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
}

func TestConnectRejectsMalformedDSN(t *testing.T) {
	if _, err := Connect(context.Background(), "postgres://%zz"); err == nil {
		t.Fatalf("expected error for malformed DATABASE_URL")
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	for _, stmt := range schema {
		sql := strings.TrimSpace(stmt.sql)
		if !strings.Contains(sql, "IF NOT EXISTS") {
			t.Errorf("schema step %s is not idempotent", stmt.name)
		}
	}
}

// TestConnectPostgres runs against a real database when DATABASE_URL is set
func TestConnectPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// A second run must not fail on existing objects.
	if err := InitSchema(ctx, pool); err != nil {
		t.Fatalf("schema rerun: %v", err)
	}
}
