// Package mcptools exposes the journal to enrichment agents over the Model
// Context Protocol.
package mcptools

import (
	"context"
	"io"
	"log/slog"

	"github.com/chris-regnier/murmur/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// NewJournalMCPServer creates an in-memory MCP server exposing journal tools.
// Returns the server and a client transport for connecting to it.
func NewJournalMCPServer(store storage.Store, identity string) (*mcp.Server, mcp.Transport) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := CreateMCPServer(store, identity, nil)

	go func() {
		_, _ = server.Connect(context.Background(), serverTransport, nil)
	}()

	return server, clientTransport
}

// CreateMCPServer creates an MCP server with registered journal tools.
// identity is used when a call does not name one.
func CreateMCPServer(store storage.Store, identity string, log *slog.Logger) *mcp.Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "murmur",
		Version: Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_entries",
		Description: "List journal entries newest first, with any existing annotation",
	}, ListEntriesHandler(store, identity))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "annotate_entry",
		Description: "Attach a category and optional translation to a journal entry by ID",
	}, AnnotateEntryHandler(store, identity, log))

	return server
}
