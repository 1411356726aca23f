package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lk2023060901/cloudvault-backend/internal/file/biz"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	cfg := logger.DefaultConfig()
	cfg.Level = "error"
	log, err := logger.New(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := NewLocalStore(dir, log)
	require.NoError(t, err)
	return store, dir
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	name, err := store.Store(ctx, "Notes.TXT", 5, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".txt"), "assigned name keeps the lowercased extension")
	assert.NotContains(t, name, "Notes", "assigned name must not leak the client filename")

	// The blob lands as a flat file in the base directory.
	_, err = os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)

	data, err := store.Load(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete(ctx, name))

	_, err = store.Load(ctx, name)
	assert.True(t, apperrors.Is(err, apperrors.ErrFileNotFound))
}

func TestLocalStoreAssignsUniqueNames(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	first, err := store.Store(ctx, "blob.txt", 1, []byte("a"))
	require.NoError(t, err)
	second, err := store.Store(ctx, "blob.txt", 1, []byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	data, err := store.Load(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)
}

func TestLocalStoreCreatesBaseDir(t *testing.T) {
	cfg := logger.DefaultConfig()
	cfg.Level = "error"
	log, err := logger.New(cfg)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err = NewLocalStore(dir, log)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStoreRejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	unsafe := []string{
		"",
		"../escape.txt",
		"..\\escape.txt",
		"nested/../blob.txt",
		"..",
	}
	for _, name := range unsafe {
		_, err := store.Store(ctx, name, 1, []byte("x"))
		assert.Error(t, err, "expected rejection for %q", name)

		_, err = store.Load(ctx, name)
		assert.Error(t, err, "expected rejection for %q", name)

		err = store.Delete(ctx, name)
		assert.Error(t, err, "expected rejection for %q", name)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no unsafe name may produce a file")
}

func TestLocalStoreRejectsDisallowedExtension(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Store(ctx, "payload.exe", 1, []byte("x"))
	assert.True(t, apperrors.Is(err, apperrors.ErrFileTypeNotAllowed))
}

func TestLocalStoreRejectsEmptyPayload(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Store(ctx, "empty.txt", 0, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrFileInvalidInput))
}

func TestLocalStoreRejectsOversizedDeclaredSize(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Store(ctx, "big.zip", biz.MaxFileSize+1, []byte("x"))
	assert.True(t, apperrors.Is(err, apperrors.ErrFileTooLarge))
}

func TestLocalStoreDeleteMissingBlob(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	err := store.Delete(ctx, "never-stored.txt")
	assert.True(t, apperrors.Is(err, apperrors.ErrFileNotFound))
}
