package mcptools

// --- MCP tool types ---
// These tools are exposed when the binary runs as an MCP server (quill mcp).
// They let an assistant generate posts and read the cache through structured
// calls instead of shelling out.

// GeneratePostInput is the input for the generate_post MCP tool.
type GeneratePostInput struct {
	Input    string `json:"input" jsonschema:"topic or description of the blog post to write"`
	UseCache *bool  `json:"useCache,omitempty" jsonschema:"return a cached post for the same input if one exists (default true)"`
}

// GeneratePostOutput is the result of the generate_post MCP tool.
type GeneratePostOutput struct {
	RunID   string   `json:"runId,omitempty"`
	Status  string   `json:"status"` // "completed" or "failed"
	Cached  bool     `json:"cached,omitempty"`
	Content string   `json:"content,omitempty"`
	Stage   string   `json:"stage,omitempty"`
	Error   string   `json:"error,omitempty"`
	Events  []string `json:"events"`
}

// GetCachedPostInput is the input for the get_cached_post MCP tool.
type GetCachedPostInput struct {
	Input  string `json:"input" jsonschema:"the exact input the post was generated from"`
	Format string `json:"format,omitempty" jsonschema:"markdown (default) or html"`
}

// GetCachedPostOutput is the result of the get_cached_post MCP tool.
type GetCachedPostOutput struct {
	Found     bool   `json:"found"`
	Content   string `json:"content,omitempty"`
	Title     string `json:"title,omitempty"`
	WordCount int    `json:"wordCount,omitempty"`
}
