package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.DocumentsConfig{Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	return store
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	written, err := store.Save(ctx, "orders/1001/bol.pdf", strings.NewReader("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, int64(13), written)

	reader, err := store.Open(ctx, "orders/1001/bol.pdf")
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(config.DocumentsConfig{Dir: dir}, nil)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "orders/1/doc.pdf", strings.NewReader("payload"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "orders", "1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.pdf", entries[0].Name())
}

func TestRejectsEscapingKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "../outside.pdf", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = store.Open(ctx, "/etc/passwd")
	assert.Error(t, err)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "orders/1/doc.pdf", strings.NewReader("payload"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, "orders/1/doc.pdf"))
	require.NoError(t, store.Remove(ctx, "orders/1/doc.pdf"))

	_, err = store.Open(ctx, "orders/1/doc.pdf")
	assert.Error(t, err)
}
