package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AnnotateEntryHandler returns the handler function for the annotate_entry MCP tool.
func AnnotateEntryHandler(store storage.Store, identity string, log *slog.Logger) func(ctx context.Context, req *mcp.CallToolRequest, input AnnotateEntryInput) (*mcp.CallToolResult, AnnotateEntryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AnnotateEntryInput) (*mcp.CallToolResult, AnnotateEntryOutput, error) {
		if err := entry.ValidateID(input.ID); err != nil {
			return nil, AnnotateEntryOutput{}, fmt.Errorf("%w: %v", storage.ErrValidation, err)
		}
		category := strings.TrimSpace(input.Category)
		if category == "" {
			return nil, AnnotateEntryOutput{}, fmt.Errorf("%w: category must not be empty", storage.ErrValidation)
		}

		j := storage.NewJournal(store, identityOr(input.Identity, identity), log)
		e, err := j.Annotate(input.ID, entry.Annotation{
			Category:    category,
			Translation: strings.TrimSpace(input.Translation),
		})
		if err != nil {
			return nil, AnnotateEntryOutput{}, err
		}
		return nil, AnnotateEntryOutput{Identity: j.Identity(), Entry: toResult(e)}, nil
	}
}
