package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dwikikusuma/storefront/internal/checkout/infra/drafttest"
)

func TestDraftStore(t *testing.T) {
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	drafttest.Run(t, store)
}
