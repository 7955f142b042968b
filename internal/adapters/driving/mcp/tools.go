package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

const defaultSearchSize = 10

// SearchInput is the input schema for the search_verses tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to search for in Arabic, English or Bangla"`
	From  int    `json:"from,omitempty" jsonschema:"number of hits to skip (default 0)"`
	Size  int    `json:"size,omitempty" jsonschema:"maximum number of hits to return (server default when omitted)"`
}

// SearchOutput is the output schema for the search_verses tool.
type SearchOutput struct {
	Total int64      `json:"total"`
	Hits  []VerseHit `json:"hits"`
	Count int        `json:"count"`
}

// VerseHit is a single verse match.
type VerseHit struct {
	ID         int64             `json:"id"`
	SuraNo     int               `json:"sura_no"`
	VerseNo    int               `json:"verse_no"`
	Arabic     string            `json:"text_arabic"`
	English    string            `json:"text_english"`
	Bangla     string            `json:"text_bangla"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SuggestInput is the input schema for the suggest_verses tool.
type SuggestInput struct {
	Prefix string `json:"prefix" jsonschema:"the beginning of a verse text"`
	Field  string `json:"field,omitempty" jsonschema:"text_arabic, text_english or text_bangla (default text_english)"`
}

// SuggestOutput is the output schema for the suggest_verses tool.
type SuggestOutput struct {
	Suggestions []string `json:"suggestions"`
}

// ReadInput is the input schema for the read_verses tool.
type ReadInput struct {
	StartID int64 `json:"start_id" jsonschema:"id of the first verse"`
	Count   int   `json:"count,omitempty" jsonschema:"number of consecutive verses, 1 to 50 (default 5)"`
}

// ReadOutput is the output schema for the read_verses tool.
type ReadOutput struct {
	Verses []domain.Verse `json:"verses"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_verses",
		Description: "Search verses across Arabic, English and Bangla texts with typo tolerance",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest_verses",
		Description: "Complete a verse text prefix in one language (at most 5 suggestions)",
	}, s.handleSuggest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_verses",
		Description: "Read consecutive verses starting at a verse id",
	}, s.handleRead)
}

// handleSearch handles the search_verses tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	size := input.Size
	if size <= 0 {
		size = s.defaultSize
	}

	result, err := s.ports.Search.Search(ctx, input.Query, input.From, size)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Total: result.Total,
		Hits:  make([]VerseHit, len(result.Hits)),
		Count: len(result.Hits),
	}
	for i, h := range result.Hits {
		output.Hits[i] = VerseHit{
			ID:      h.Verse.ID,
			SuraNo:  h.Verse.SuraNo,
			VerseNo: h.Verse.VerseNo,
			Arabic:  h.Verse.TextArabic,
			English: h.Verse.TextEnglish,
			Bangla:  h.Verse.TextBangla,
			Score:   h.Score,
		}
		if len(h.Highlights) > 0 {
			output.Hits[i].Highlights = make(map[string]string, len(h.Highlights))
			for f, frag := range h.Highlights {
				output.Hits[i].Highlights[f.String()] = frag
			}
		}
	}

	return nil, output, nil
}

// handleSuggest handles the suggest_verses tool invocation.
func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	field := input.Field
	if field == "" {
		field = string(domain.FieldEnglish)
	}

	suggestions, err := s.ports.Search.Suggest(ctx, input.Prefix, field)
	if err != nil {
		return nil, SuggestOutput{}, err
	}

	output := SuggestOutput{Suggestions: make([]string, len(suggestions))}
	for i, sg := range suggestions {
		output.Suggestions[i] = sg.Text
	}
	return nil, output, nil
}

// handleRead handles the read_verses tool invocation.
func (s *Server) handleRead(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadInput,
) (*mcp.CallToolResult, ReadOutput, error) {
	page, err := s.ports.Search.Consecutive(ctx, input.StartID, input.Count)
	if err != nil {
		return nil, ReadOutput{}, err
	}
	return nil, ReadOutput{Verses: page.Verses}, nil
}
