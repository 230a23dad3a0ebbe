package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/streed/vault-suggest/internal/config"
	"github.com/streed/vault-suggest/internal/logger"
	"github.com/streed/vault-suggest/internal/pipeline"
)

// SuggestServer exposes the suggestion pipeline over the Model Context
// Protocol so LLM clients can ask for links and tags directly.
type SuggestServer struct {
	cfg       *config.Config
	pipeline  *pipeline.Pipeline
	mcpServer *server.MCPServer
}

func NewSuggestServer(cfg *config.Config, p *pipeline.Pipeline) *SuggestServer {
	s := &SuggestServer{
		cfg:      cfg,
		pipeline: p,
	}

	s.mcpServer = server.NewMCPServer(
		"vault-suggest",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()
	return s
}

func (s *SuggestServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *SuggestServer) registerTools() {
	suggestTool := mcp.NewTool("suggest_links",
		mcp.WithDescription("Suggest wikilinks and tags for a piece of text using vector retrieval and graph expansion"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to find link and tag suggestions for"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of candidates to retrieve (default from config)"),
		),
	)
	s.mcpServer.AddTool(suggestTool, s.handleSuggest)

	processTool := mcp.NewTool("process_text",
		mcp.WithDescription("Run the full pipeline on a piece of text: suggestions, escalation to the tag arbiter if retrieval is weak, and optionally writing a formatted note into the vault inbox"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The text to process"),
		),
		mcp.WithString("title",
			mcp.Description("Note title (required when write is true)"),
		),
		mcp.WithBoolean("write",
			mcp.Description("Write the resulting note into the vault inbox (default: false)"),
		),
	)
	s.mcpServer.AddTool(processTool, s.handleProcess)

	listTagsTool := mcp.NewTool("list_tags",
		mcp.WithDescription("List the vault's tag vocabulary"),
	)
	s.mcpServer.AddTool(listTagsTool, s.handleListTags)
}

// Tool handlers

func (s *SuggestServer) handleSuggest(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: suggest_links")

	text, err := request.RequireString("text")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'text': %w", err)
	}
	topK := request.GetInt("top_k", 0)

	result, err := s.pipeline.Suggest(text, topK)
	if err != nil {
		return nil, fmt.Errorf("suggestion failed: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *SuggestServer) handleProcess(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: process_text")

	text, err := request.RequireString("text")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'text': %w", err)
	}
	title := request.GetString("title", "")
	write := request.GetBool("write", false)

	if write && title == "" {
		return nil, fmt.Errorf("'title' is required when write is true")
	}

	result, err := s.pipeline.Process(text, title)
	if err != nil {
		return nil, fmt.Errorf("processing failed: %w", err)
	}

	var b strings.Builder
	data, _ := json.MarshalIndent(result, "", "  ")
	b.Write(data)

	if write {
		path, err := s.pipeline.WriteNote(title, text, result)
		if err != nil {
			return nil, fmt.Errorf("failed to write note: %w", err)
		}
		fmt.Fprintf(&b, "\n\nNote written to: %s", path)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *SuggestServer) handleListTags(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: list_tags")

	tags := s.pipeline.Snapshot().SortedVocab()
	if len(tags) == 0 {
		return mcp.NewToolResultText("No tags found."), nil
	}

	result := fmt.Sprintf("Found %d tags:\n\n", len(tags))
	for i, tag := range tags {
		result += fmt.Sprintf("%d. %s\n", i+1, tag)
	}
	return mcp.NewToolResultText(result), nil
}
