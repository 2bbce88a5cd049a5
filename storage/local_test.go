package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageReadWrite(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStorage(t.TempDir())

	require.NoError(t, store.Write(ctx, "db/t/metadata/file.json", strings.NewReader("{}")))

	r, err := store.Read(ctx, "db/t/metadata/file.json")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	exists, err := store.Exists(ctx, "db/t/metadata/file.json")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "db/t/metadata/other.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageList(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStorage(t.TempDir())

	require.NoError(t, store.Write(ctx, "db/t/a.parquet", strings.NewReader("a")))
	require.NoError(t, store.Write(ctx, "db/t/metadata/v1.metadata.json", strings.NewReader("{}")))

	files, err := store.List(ctx, "db/t")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"db/t/a.parquet", "db/t/metadata/v1.metadata.json"}, files)

	files, err = store.List(ctx, "db/absent")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalStorageRemoveAll(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStorage(t.TempDir())

	require.NoError(t, store.Write(ctx, "db/t/metadata/v1.metadata.json", strings.NewReader("{}")))
	require.NoError(t, store.Write(ctx, "db/t/a.parquet", strings.NewReader("a")))

	require.NoError(t, store.RemoveAll(ctx, "db/t/metadata"))

	exists, err := store.Exists(ctx, "db/t/metadata/v1.metadata.json")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Exists(ctx, "db/t/a.parquet")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStorageRename(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStorage(t.TempDir())

	require.NoError(t, store.Write(ctx, "db/.tmp-t/snapshot/LATEST", strings.NewReader("1")))
	require.NoError(t, store.Rename(ctx, "db/.tmp-t", "db/t"))

	exists, err := store.Exists(ctx, "db/t/snapshot/LATEST")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "db/.tmp-t/snapshot/LATEST")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBufferTracksSize(t *testing.T) {
	buf := NewBuffer()
	_, err := buf.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), buf.Size())

	data, err := io.ReadAll(buf.Reader())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	buf.Reset()
	assert.Equal(t, int64(0), buf.Size())
}
