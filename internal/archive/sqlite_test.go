package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestArchive(t *testing.T, files map[string]string, order []string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	w, err := NewSQLiteWriter(dbPath)
	require.NoError(t, err)
	mtime := time.Unix(1700000000, 0)
	for _, p := range order {
		require.NoError(t, w.AddFile(p, []byte(files[p]), mtime))
	}
	require.NoError(t, w.Close())
	return dbPath
}

func TestSQLiteArchive_RoundTrip(t *testing.T) {
	files := map[string]string{
		"DATA/Characters/Garen/Garen.inibin": "legacy",
		"DATA/Characters/Ashe/Skins/Base/Base.inibin": "modern",
	}
	dbPath := writeTestArchive(t, files, []string{
		"DATA/Characters/Garen/Garen.inibin",
		"DATA/Characters/Ashe/Skins/Base/Base.inibin",
	})

	a, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	t.Run("children keep write order", func(t *testing.T) {
		chars, err := a.Resolve(a.Root(), "DATA/Characters")
		require.NoError(t, err)
		kids, err := a.Children(chars)
		require.NoError(t, err)
		require.Len(t, kids, 2)

		first, err := a.Name(kids[0])
		require.NoError(t, err)
		second, err := a.Name(kids[1])
		require.NoError(t, err)
		assert.Equal(t, "Garen", first)
		assert.Equal(t, "Ashe", second)
	})

	t.Run("read file", func(t *testing.T) {
		h, err := a.Resolve(a.Root(), "DATA/Characters/Garen/Garen.inibin")
		require.NoError(t, err)
		data, err := a.ReadAll(h)
		require.NoError(t, err)
		assert.Equal(t, "legacy", string(data))

		// second read is served from the cache
		data, err = a.ReadAll(h)
		require.NoError(t, err)
		assert.Equal(t, "legacy", string(data))
		assert.Equal(t, 1, a.cache.len())
	})

	t.Run("stat", func(t *testing.T) {
		h, err := a.Resolve(a.Root(), "DATA/Characters/Ashe/Skins/Base/Base.inibin")
		require.NoError(t, err)
		e, err := a.Stat(h)
		require.NoError(t, err)
		assert.False(t, e.IsDir())
		assert.Equal(t, "Base.inibin", e.Name)
		assert.Equal(t, int64(6), e.Size)
		assert.Equal(t, time.Unix(1700000000, 0).UnixNano(), e.ModTime.UnixNano())

		dir, err := a.Resolve(a.Root(), "DATA/Characters/Ashe/Skins")
		require.NoError(t, err)
		e, err = a.Stat(dir)
		require.NoError(t, err)
		assert.True(t, e.IsDir())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := a.Resolve(a.Root(), "DATA/Characters/Zed")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = a.ReadAll(HandleFor("DATA/nope.bin"))
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = a.Name(HandleFor("DATA/nope.bin"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list a file fails", func(t *testing.T) {
		_, err := a.Children(HandleFor("DATA/Characters/Garen/Garen.inibin"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestOpenSQLite_NotAnArchive(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	w, err := NewSQLiteWriter(dbPath)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// empty but valid
	a, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	kids, err := a.Children(a.Root())
	require.NoError(t, err)
	assert.Empty(t, kids)
	require.NoError(t, a.Close())

	_, err = OpenSQLite(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestPack(t *testing.T) {
	src := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(src, "/extract/DATA/Characters/Ashe/Skins/Skin01/Skin01.inibin", []byte("s1"), 0o644))
	require.NoError(t, afero.WriteFile(src, "/extract/DATA/Characters/Ashe/Skins/Base/Base.inibin", []byte("base"), 0o644))
	require.NoError(t, src.MkdirAll("/extract/DATA/Characters/Empty", 0o755))

	dbPath := filepath.Join(t.TempDir(), "packed.db")
	w, err := NewSQLiteWriter(dbPath)
	require.NoError(t, err)
	stats, err := Pack(src, "/extract", w)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, int64(6), stats.Bytes)
	assert.Equal(t, 7, stats.Dirs)

	a, err := OpenSQLite(dbPath)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	skins, err := a.Resolve(a.Root(), "DATA/Characters/Ashe/Skins")
	require.NoError(t, err)
	kids, err := a.Children(skins)
	require.NoError(t, err)
	require.Len(t, kids, 2)
	name, err := a.Name(kids[0])
	require.NoError(t, err)
	assert.Equal(t, "Base", name, "lexical walk order is preserved")

	empty, err := a.Resolve(a.Root(), "DATA/Characters/Empty")
	require.NoError(t, err)
	e, err := a.Stat(empty)
	require.NoError(t, err)
	assert.True(t, e.IsDir())
}
