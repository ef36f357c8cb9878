package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/fitmin/internal/catalog"
	"github.com/joescharf/fitmin/internal/coach"
	"github.com/joescharf/fitmin/internal/models"
	"github.com/joescharf/fitmin/internal/stats"
)

// Server exposes stats, the exercise library and the coach as MCP tools.
type Server struct {
	catalog    *catalog.Catalog
	stats      *stats.Aggregator
	transcript *coach.Transcript
	version    string
}

// NewServer creates the MCP server wrapper.
func NewServer(cat *catalog.Catalog, agg *stats.Aggregator, transcript *coach.Transcript, version string) *Server {
	return &Server{
		catalog:    cat,
		stats:      agg,
		transcript: transcript,
		version:    version,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("fitmin", s.version,
		server.WithToolCapabilities(false),
		server.WithInstructions("fitmin home-fitness tracker. Read activity stats, browse the exercise library and ask the Arabic-speaking coach for advice."),
	)

	srv.AddTools(
		server.ServerTool{Tool: toolStats, Handler: s.handleStats},
		server.ServerTool{Tool: toolListExercises, Handler: s.handleListExercises},
		server.ServerTool{Tool: toolDailyExercise, Handler: s.handleDailyExercise},
		server.ServerTool{Tool: toolAskCoach, Handler: s.handleAskCoach},
	)
	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// --- Tool definitions ---

var toolStats = mcp.NewTool("fitmin_stats",
	mcp.WithDescription("Get the activity aggregate: streak, total workouts, total minutes and the last seven days of minutes."),
)

var toolListExercises = mcp.NewTool("fitmin_list_exercises",
	mcp.WithDescription("List exercises from the library. Each entry has id, name, category, duration (seconds) or reps, intensity and description."),
	mcp.WithString("category",
		mcp.Description("Filter by category"),
		mcp.Enum("all", "abs", "chest", "legs", "arms", "full"),
	),
)

var toolDailyExercise = mcp.NewTool("fitmin_daily_exercise",
	mcp.WithDescription("Get the featured exercise of the day."),
)

var toolAskCoach = mcp.NewTool("fitmin_ask_coach",
	mcp.WithDescription("Ask the fitness coach a question. The coach answers in Arabic and remembers earlier questions in this session."),
	mcp.WithString("prompt", mcp.Required(), mcp.Description("Question for the coach")),
)

// --- Handlers ---

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.stats.Snapshot())
}

func (s *Server) handleListExercises(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat := models.Category(request.GetString("category", ""))
	if cat != "" && !cat.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", cat)), nil
	}
	return jsonResult(s.catalog.Filter(cat))
}

func (s *Server) handleDailyExercise(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ex, ok := s.catalog.Daily()
	if !ok {
		return mcp.NewToolResultError("exercise library is empty"), nil
	}
	return jsonResult(ex)
}

func (s *Server) handleAskCoach(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}

	reply, err := s.transcript.Send(ctx, prompt)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(reply.Text), nil
}
