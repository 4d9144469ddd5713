package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/matzehuels/archflow/pkg/store"
	"github.com/matzehuels/archflow/pkg/store/storetest"
)

// Set ARCHFLOW_TEST_POSTGRES_URL to run against a scratch database. The
// tables are dropped before each subtest.
func TestStore(t *testing.T) {
	dsn := os.Getenv("ARCHFLOW_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("ARCHFLOW_TEST_POSTGRES_URL not set")
	}
	storetest.Run(t, func(t *testing.T, clock store.Clock) store.Store {
		ctx := context.Background()
		s, err := Connect(ctx, dsn, clock)
		if err != nil {
			t.Fatalf("Connect() error: %v", err)
		}
		if err := s.DropSchema(ctx); err != nil {
			t.Fatalf("DropSchema() error: %v", err)
		}
		if err := s.CreateSchema(ctx); err != nil {
			t.Fatalf("CreateSchema() error: %v", err)
		}
		return s
	})
}
