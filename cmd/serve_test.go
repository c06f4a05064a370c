package cmd

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

func TestPackArchive(t *testing.T) {
	src := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(src, "/game/DATA/Characters/Ashe/Skins/Base/Base.inibin",
		skinConfig("Ashe.skn", "Ashe.skl", "Ashe.dds"), 0o644))
	require.NoError(t, afero.WriteFile(src, "/game/DATA/Characters/Ashe/Skins/Base/Ashe.skn", []byte("mesh"), 0o644))

	out := filepath.Join(t.TempDir(), "game.db")
	stats, _, err := packArchive(src, "/game", out)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)

	a, err := archive.Open(out)
	require.NoError(t, err)
	defer func() { _ = archive.Close(a) }()

	b, err := skins.ResolveSkin(a, "ashe", 0)
	require.NoError(t, err)
	assert.Equal(t, "DATA/Characters/Ashe/Skins/Base/Ashe.skn", b.Geometry)

	_, _, err = packArchive(src, "/game/DATA/Characters/Ashe/Skins/Base/Ashe.skn", out)
	assert.Error(t, err, "source must be a directory")
}

func TestPackCommand_MatchesDirectory(t *testing.T) {
	dir := newTestArchiveDir(t)
	db := filepath.Join(t.TempDir(), "packed.db")

	out, err := run(t, "pack", dir, db)
	require.NoError(t, err)
	assert.Contains(t, out, "Packed")

	fromDir, err := run(t, "resolve", "garen", "4", "--archive", dir, "-o", "json")
	require.NoError(t, err)
	fromDB, err := run(t, "resolve", "garen", "4", "--archive", db, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, fromDir, fromDB)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestMCPTools(t *testing.T) {
	a, err := archive.Open(newTestArchiveDir(t))
	require.NoError(t, err)
	tools := &skinTools{resolver: skins.NewResolver(a)}

	text, isErr := callTool(t, tools.resolveSkin, map[string]any{"character": "ashe", "skin": float64(1)})
	require.False(t, isErr, text)
	var b skins.Bundle
	require.NoError(t, json.Unmarshal([]byte(text), &b))
	assert.Equal(t, "DATA/Characters/Ashe/Skins/Skin01/AsheLoadScreen_1.dds", b.LoadScreen)

	text, isErr = callTool(t, tools.resolveSkin, map[string]any{"character": "Garen", "skin": float64(8)})
	assert.True(t, isErr)
	assert.Contains(t, text, "invalid_skin_index")

	text, isErr = callTool(t, tools.resolveSkin, map[string]any{"character": "Teemo", "skin": float64(0)})
	assert.True(t, isErr)
	assert.Contains(t, text, "not_found")

	_, isErr = callTool(t, tools.resolveSkin, map[string]any{"skin": float64(0)})
	assert.True(t, isErr, "character is required")

	text, isErr = callTool(t, tools.listCharacters, nil)
	require.False(t, isErr, text)
	assert.JSONEq(t, `["Ashe","Garen"]`, text)

	text, isErr = callTool(t, tools.listSkins, map[string]any{"character": "GAREN"})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"character":"Garen","layout":"legacy","skins":[0,1,2,3,4]}`, text)
}

func TestNewMCPServer(t *testing.T) {
	s := newMCPServer(skins.NewResolver(archive.NewMemoryArchive()))
	require.NotNil(t, s)
}

func TestWatchArchive_ReloadsPackedFile(t *testing.T) {
	dir := newTestArchiveDir(t)
	db := filepath.Join(t.TempDir(), "game.db")
	_, _, err := packArchive(afero.NewOsFs(), dir, db)
	require.NoError(t, err)

	a, err := archive.Open(db)
	require.NoError(t, err)
	hs := archive.NewHotSwap(a)
	defer func() { _ = hs.Close() }()

	w, err := watchArchive(db, hs, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	_, err = skins.ResolveSkin(hs, "Annie", 0)
	require.ErrorIs(t, err, skins.ErrNotFound)

	writeFile(t, dir, "DATA/Characters/Annie/Skins/Base/Base.inibin", skinConfig("Annie.skn", "Annie.skl", "Annie.dds"))
	_, _, err = packArchive(afero.NewOsFs(), dir, db)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := skins.ResolveSkin(hs, "Annie", 0)
		return err == nil
	}, 10*time.Second, 50*time.Millisecond)
}

func TestWatchArchive_FailedReloadKeepsCurrent(t *testing.T) {
	dir := newTestArchiveDir(t)
	a, err := archive.Open(dir)
	require.NoError(t, err)
	hs := archive.NewHotSwap(a)

	w, err := watchArchive(dir, hs, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	w.path = filepath.Join(dir, "gone")
	w.reload()
	assert.Same(t, a, hs.Current())
}
