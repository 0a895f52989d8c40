// Package storetest opens migrated in-memory stores for service tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/estudai/estudai/internal/store"
)

var seq atomic.Int64

// Open returns a migrated SQLite store private to the calling test.
// The store is closed via t.Cleanup.
func Open(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	s, err := store.Open(ctx, store.DialectSQLite, dsn)
	if err != nil {
		t.Fatalf("storetest: open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("storetest: migrate: %v", err)
	}
	return s
}
