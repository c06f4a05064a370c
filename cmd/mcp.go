package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve skin lookups to MCP clients over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, p, err := openArchive()
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close(a) }()

		log.Info().Str("archive", p).Msg("starting mcp server on stdio")
		return server.ServeStdio(newMCPServer(newResolver(a)))
	},
}

// skinTools implements the MCP tool handlers over one resolver.
type skinTools struct {
	resolver *skins.Resolver
}

func newMCPServer(r *skins.Resolver) *server.MCPServer {
	s := server.NewMCPServer("skinpath", version, server.WithToolCapabilities(false))
	t := &skinTools{resolver: r}

	s.AddTool(mcp.NewTool("resolve_skin",
		mcp.WithDescription("Resolve the geometry, skeleton, texture and load-screen paths of a character skin"),
		mcp.WithString("character", mcp.Required(), mcp.Description("Character name, case-insensitive (e.g. Ashe)")),
		mcp.WithNumber("skin", mcp.Required(), mcp.Description("Skin index, 0 for the base skin")),
	), t.resolveSkin)

	s.AddTool(mcp.NewTool("list_characters",
		mcp.WithDescription("List the character names in the archive"),
	), t.listCharacters)

	s.AddTool(mcp.NewTool("list_skins",
		mcp.WithDescription("List the skin indices available for a character"),
		mcp.WithString("character", mcp.Required(), mcp.Description("Character name, case-insensitive")),
	), t.listSkins)

	return s
}

func (t *skinTools) resolveSkin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("character")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	skin, err := req.RequireInt("skin")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if skin < 0 || int64(skin) > int64(^uint32(0)) {
		return toolError(fmt.Errorf("%w: %d", skins.ErrInvalidSkinIndex, skin)), nil
	}

	b, err := t.resolver.Resolve(name, uint32(skin))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(b)
}

func (t *skinTools) listCharacters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := skins.Characters(t.resolver.Archive)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(names)
}

func (t *skinTools) listSkins(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("character")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inv, err := t.resolver.Inventory(name)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(map[string]any{
		"character": inv.Character,
		"layout":    inv.Layout.String(),
		"skins":     inv.Indices(),
	})
}

// toolError reports a lookup failure to the client, tagged with its outcome.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", skins.Classify(err), err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
