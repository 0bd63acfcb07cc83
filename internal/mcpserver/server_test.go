package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/coursedocs/internal/docservice"
	"github.com/starford/coursedocs/internal/grouping"
	"github.com/starford/coursedocs/internal/models"
	"github.com/starford/coursedocs/internal/pipeline"
	"github.com/starford/coursedocs/internal/testutil"
)

func testServer(t *testing.T, run bool) *Server {
	t.Helper()
	srv, _ := testServerWithLogs(t, run)
	return srv
}

// testServerWithLogs also returns the JSON log output of the tools.
func testServerWithLogs(t *testing.T, run bool) (*Server, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, in := testutil.TestDir(t, map[string]string{
		"01_agents_part_1.txt": "# Agents Part 1\nTool calling with an LLM.",
		"02_agents_part_2.txt": "# Agents Part 2\nMemory and planning for the agent.",
		"03_triage.txt":        "# Triage Assistant\nReads the patient chart before the doctor visit.",
	})
	_, out := testutil.TestDir(t, nil)
	db := testutil.TestDB(t)

	p := pipeline.New(in, out, db, nil)
	if run {
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatalf("pipeline: %v", err)
		}
	}
	return New(docservice.NewService(out, db), p, logger), &buf
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so dispatch to the handlers directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "search_documents":
		result, err = srv.searchDocuments(ctx, req)
	case "classify_text":
		result, err = srv.classifyText(ctx, req)
	case "group_titles":
		result, err = srv.groupTitles(ctx, req)
	case "get_document_format":
		result, err = srv.getDocumentFormat(ctx, req)
	case "run_pipeline":
		result, err = srv.runPipeline(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListDocuments(t *testing.T) {
	srv := testServer(t, true)

	text := resultText(callTool(t, srv, "list_documents", map[string]any{}))
	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("list = %q", text)
	}
	if !strings.HasPrefix(lines[0], "agents-part-1-part-2.md\tGeneralTechnical") {
		t.Errorf("first line = %q", lines[0])
	}

	text = resultText(callTool(t, srv, "list_documents", map[string]any{"category": "HealthcareApplicable"}))
	if !strings.HasPrefix(text, "healthcare-triage-assistant.md") || strings.Contains(text, "\n") {
		t.Errorf("healthcare list = %q", text)
	}

	r := callTool(t, srv, "list_documents", map[string]any{"category": "Bogus"})
	if !r.IsError {
		t.Error("expected error for unknown category")
	}
}

func TestListDocuments_Empty(t *testing.T) {
	srv := testServer(t, false)
	if text := resultText(callTool(t, srv, "list_documents", map[string]any{})); text != "no documents found" {
		t.Errorf("list = %q", text)
	}
}

func TestReadDocument(t *testing.T) {
	srv := testServer(t, true)

	text := resultText(callTool(t, srv, "read_document", map[string]any{"path": "healthcare-triage-assistant.md"}))
	if !strings.HasPrefix(text, "---\n") || !strings.Contains(text, "# Healthcare: Triage Assistant") {
		t.Errorf("read = %q", text)
	}

	r := callTool(t, srv, "read_document", map[string]any{"path": "nope.md"})
	if !r.IsError || !strings.Contains(resultText(r), "not found") {
		t.Errorf("missing document = %+v", r)
	}

	if r := callTool(t, srv, "read_document", map[string]any{}); !r.IsError {
		t.Error("expected error for missing path")
	}
}

func TestSearchDocuments(t *testing.T) {
	srv := testServer(t, true)

	text := resultText(callTool(t, srv, "search_documents", map[string]any{"query": "planning", "limit": 5}))
	var results []struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal([]byte(text), &results); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if len(results) != 1 || results[0].Path != "agents-part-1-part-2.md" {
		t.Errorf("results = %+v", results)
	}
}

func TestClassifyText(t *testing.T) {
	srv := testServer(t, false)

	text := resultText(callTool(t, srv, "classify_text", map[string]any{
		"title": "Support Bot",
		"body":  "Route each support ticket to the clinic nurse.",
	}))
	var got struct {
		Category    models.Category `json:"category"`
		Prefix      bool            `json:"use_domain_prefix"`
		AdaptedBody string          `json:"adapted_body"`
	}
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if got.Category != models.CategoryHealthcare || !got.Prefix {
		t.Errorf("classification = %+v", got)
	}
	if !strings.Contains(got.AdaptedBody, "clinical case") {
		t.Errorf("adapted body = %q", got.AdaptedBody)
	}

	if r := callTool(t, srv, "classify_text", map[string]any{"title": "x"}); !r.IsError {
		t.Error("expected error for missing body")
	}
}

func TestGroupTitles(t *testing.T) {
	srv := testServer(t, false)

	text := resultText(callTool(t, srv, "group_titles", map[string]any{
		"titles": "Agents Part 1\nDocker Basics\n\nAgents Part 2\n",
	}))
	var groups []titleGroup
	if err := json.Unmarshal([]byte(text), &groups); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	if !groups[0].Consolidated || len(groups[0].Titles) != 2 || groups[0].Titles[1] != "Agents Part 2" {
		t.Errorf("first group = %+v", groups[0])
	}
	if groups[1].Name != "Docker Basics" {
		t.Errorf("second group = %+v", groups[1])
	}
}

func TestGroupTitles_LogsMergeDecisions(t *testing.T) {
	srv, logs := testServerWithLogs(t, false)
	logs.Reset()

	_ = callTool(t, srv, "group_titles", map[string]any{
		"titles": "Agents Part 1\nAgents Part 2",
	})
	var merged bool
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var rec struct {
			Msg     string `json:"msg"`
			Reason  string `json:"reason"`
			Pattern string `json:"pattern"`
		}
		if json.Unmarshal([]byte(line), &rec) == nil && rec.Msg == "grouping: merged" {
			merged = rec.Reason == "pattern" && rec.Pattern == string(grouping.FamilyNumbered)
		}
	}
	if !merged {
		t.Errorf("no pattern merge record in logs: %s", logs.String())
	}
}

func TestClassifyText_LogsNeutralFallback(t *testing.T) {
	srv, logs := testServerWithLogs(t, false)
	logs.Reset()

	_ = callTool(t, srv, "classify_text", map[string]any{
		"title": "Gardening",
		"body":  "Water the tomatoes every morning.",
	})
	if !strings.Contains(logs.String(), `"msg":"classify: no keyword signal"`) ||
		!strings.Contains(logs.String(), `"level":"WARN"`) {
		t.Errorf("missing fallback warning: %s", logs.String())
	}
}

func TestGroupTitles_Threshold(t *testing.T) {
	srv := testServer(t, false)
	titles := "Kubernetes Deep Dive\nKubernetes Deep Dives"

	var groups []titleGroup
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "group_titles", map[string]any{"titles": titles}))), &groups)
	if len(groups) != 1 {
		t.Errorf("default threshold groups = %+v", groups)
	}

	groups = nil
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "group_titles", map[string]any{"titles": titles, "threshold": 0.99}))), &groups)
	if len(groups) != 2 {
		t.Errorf("strict threshold groups = %+v", groups)
	}

	if r := callTool(t, srv, "group_titles", map[string]any{"titles": titles, "threshold": 1.5}); !r.IsError {
		t.Error("expected error for threshold above 1")
	}
	if r := callTool(t, srv, "group_titles", map[string]any{"titles": "\n \n"}); !r.IsError {
		t.Error("expected error for blank titles")
	}
}

func TestRunPipeline(t *testing.T) {
	srv := testServer(t, false)

	text := resultText(callTool(t, srv, "run_pipeline", map[string]any{}))
	var report pipeline.Report
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if report.Transcripts != 3 || report.Written != 2 {
		t.Errorf("report = %+v", report)
	}
	if text := resultText(callTool(t, srv, "list_documents", map[string]any{})); text == "no documents found" {
		t.Error("run did not populate the manifest")
	}
}

func TestDocumentFormat(t *testing.T) {
	srv := testServer(t, false)
	if text := resultText(callTool(t, srv, "get_document_format", nil)); !strings.Contains(text, "## Key Concepts") {
		t.Errorf("format = %q", text)
	}

	contents, err := srv.readDocumentFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != formatURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
