package mcptools

import (
	"context"

	"github.com/chris-regnier/murmur/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListEntriesHandler returns the handler function for the list_entries MCP tool.
func ListEntriesHandler(store storage.Store, identity string) func(ctx context.Context, req *mcp.CallToolRequest, input ListEntriesInput) (*mcp.CallToolResult, ListEntriesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListEntriesInput) (*mcp.CallToolResult, ListEntriesOutput, error) {
		id := identityOr(input.Identity, identity)
		c, err := store.Load(id)
		if err != nil {
			return nil, ListEntriesOutput{}, err
		}

		display := c.Display()
		if input.Limit > 0 && input.Limit < len(display) {
			display = display[:input.Limit]
		}
		results := make([]EntryResult, len(display))
		for i, e := range display {
			results[i] = toResult(e)
		}
		return nil, ListEntriesOutput{Identity: id, Entries: results}, nil
	}
}
