package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitSchemaMigrationContainsCoreTables(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_init_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no init schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE users",
		"CREATE TABLE customers",
		"CREATE TABLE employees",
		"CREATE TABLE vehicles",
		"CREATE TABLE units",
		"CREATE TABLE orders",
		"CREATE TABLE order_documents",
		"CREATE TABLE tracking_events",
		"CREATE TABLE notifications",
		"CREATE TABLE outbox_events",
		"CREATE TABLE outbox_dlq",
		"ux_outbox_events_event_aggregate",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
