// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes generated course documents and the grouping and
// classification engines to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/coursedocs/internal/apperr"
	"github.com/starford/coursedocs/internal/classify"
	"github.com/starford/coursedocs/internal/docservice"
	"github.com/starford/coursedocs/internal/grouping"
	"github.com/starford/coursedocs/internal/models"
	"github.com/starford/coursedocs/internal/pipeline"
)

const formatURI = "coursedocs://document-format"

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Server wraps the MCP server with coursedocs tools.
type Server struct {
	mcp        *server.MCPServer
	svc        *docservice.Service
	classifier *classify.Classifier
	runner     Runner
	logger     *slog.Logger
}

// New creates a new MCP server with all tools registered. The run_pipeline
// tool is only registered when runner is non-nil. Merge decisions and
// classification warnings from the tools go to logger.
func New(svc *docservice.Service, runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, classifier: classify.New(logger), runner: runner, logger: logger}

	s.mcp = server.NewMCPServer(
		"coursedocs",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List generated documents, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("HealthcareApplicable, GeneralTechnical or DomainNeutral (empty for all)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full Markdown of a generated document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document file name (e.g. rag-pipelines.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through generated document names, bodies and architecture layers."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("classify_text",
		mcp.WithDescription("Classify a transcript title and body into a domain category and architecture layers. "+
			"Healthcare content is returned with its adapted body."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Transcript title")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Transcript body text")),
	), s.classifyText)

	s.mcp.AddTool(mcp.NewTool("group_titles",
		mcp.WithDescription("Group transcript titles into topics using continuation patterns and title similarity."),
		mcp.WithString("titles", mcp.Required(), mcp.Description("Titles, one per line, in input order")),
		mcp.WithNumber("threshold", mcp.Description("Similarity a pair must exceed to merge (default 0.7)")),
	), s.groupTitles)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the structure every generated document follows."),
	), s.getDocumentFormat)

	if runner != nil {
		s.mcp.AddTool(mcp.NewTool("run_pipeline",
			mcp.WithDescription("Regenerate documents from the input directory and return the run report."),
		), s.runPipeline)
	}

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Document Format",
			mcp.WithResourceDescription("Structure of generated course documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.ListDocuments(ctx, req.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("no documents found"), nil
	}
	lines := make([]string, 0, len(docs))
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", d.Path, d.Category, d.Name))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

type classifyResult struct {
	models.Classification
	AdaptedBody string `json:"adapted_body"`
}

func (s *Server) classifyText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c := s.classifier.ClassifyText(title, body)
	return jsonResult(classifyResult{Classification: c, AdaptedBody: c.AdaptedBody})
}

type titleGroup struct {
	Name         string   `json:"name"`
	Titles       []string `json:"titles"`
	Consolidated bool     `json:"consolidated"`
}

func (s *Server) groupTitles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("titles")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	threshold := req.GetFloat("threshold", grouping.DefaultThreshold)
	if threshold <= 0 || threshold > 1 {
		return mcp.NewToolResultError("threshold must be in (0, 1]"), nil
	}

	var ts []models.Transcript
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		ts = append(ts, models.Transcript{ID: strconv.Itoa(len(ts) + 1), Title: line})
	}
	if len(ts) == 0 {
		return mcp.NewToolResultError("no titles given"), nil
	}

	groups := grouping.New(s.logger, grouping.WithThreshold(threshold)).Group(ts)
	out := make([]titleGroup, 0, len(groups))
	for _, g := range groups {
		tg := titleGroup{Name: g.Name, Consolidated: g.Consolidated}
		for _, m := range g.Members {
			tg.Titles = append(tg.Titles, m.Title)
		}
		out = append(out, tg)
	}
	return jsonResult(out)
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormat), nil
}

func (s *Server) runPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.runner.Run(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormat,
		},
	}, nil
}
