package mcptools

// ListEntriesInput is the input schema for the list_entries MCP tool.
type ListEntriesInput struct {
	Identity string `json:"identity,omitempty" jsonschema:"Journal identity; defaults to the server's identity"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of entries to return, newest first"`
}

// ListEntriesOutput is the output schema for the list_entries MCP tool.
type ListEntriesOutput struct {
	Identity string        `json:"identity"`
	Entries  []EntryResult `json:"entries"`
}

// EntryResult is the common output format for entry-related MCP tools.
type EntryResult struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Period      string `json:"period"`
	Text        string `json:"text"`
	Category    string `json:"category,omitempty"`
	Translation string `json:"translation,omitempty"`
}

// AnnotateEntryInput is the input schema for the annotate_entry MCP tool.
type AnnotateEntryInput struct {
	Identity    string `json:"identity,omitempty" jsonschema:"Journal identity; defaults to the server's identity"`
	ID          string `json:"id" jsonschema:"ID of the entry to annotate"`
	Category    string `json:"category" jsonschema:"Short category tag, e.g. gratitude or work"`
	Translation string `json:"translation,omitempty" jsonschema:"Optional translation of the entry text"`
}

// AnnotateEntryOutput is the output schema for the annotate_entry MCP tool.
type AnnotateEntryOutput struct {
	Identity string      `json:"identity"`
	Entry    EntryResult `json:"entry"`
}
