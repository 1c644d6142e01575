package mcpserver

import (
	"context"
	"errors"

	appsession "roulette-oracle/internal/app/session"

	"github.com/mark3labs/mcp-go/mcp"
)

const defaultTopPredictions = 12

func (s *Server) registerViewTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_predictions",
			mcp.WithDescription("Consensus numbers, per-strategy results and ranked bet categories"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
			mcp.WithNumber("limit", mcp.Description("Maximum consensus numbers to return, default 12")),
		),
		s.handleGetPredictions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_agent",
			mcp.WithDescription("Learning agent state and its top-ranked bet actions"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleGetAgent,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_stats",
			mcp.WithDescription("Frequency, bias and trend statistics for the session"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleGetStats,
	)
}

func (s *Server) handleGetPredictions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.session(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	p, err := sess.Predict()
	if err != nil {
		return viewError(sess, err, appsession.MinPredictionSpins), nil
	}
	limit := request.GetInt("limit", defaultTopPredictions)
	if limit > 0 && limit < len(p.Consensus.Predictions) {
		p.Consensus.Predictions = p.Consensus.Predictions[:limit]
	}
	return toolResult(p), nil
}

func (s *Server) handleGetAgent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.session(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	v, err := sess.Agent()
	if err != nil {
		return viewError(sess, err, appsession.MinAgentSpins), nil
	}
	return toolResult(v), nil
}

func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.session(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	sum, err := sess.Stats()
	if err != nil {
		return viewError(sess, err, appsession.MinPredictionSpins), nil
	}
	return toolResult(sum), nil
}

// viewError reports a short history as a successful not-ready result.
func viewError(sess *appsession.Session, err error, need int) *mcp.CallToolResult {
	if errors.Is(err, appsession.ErrInsufficientData) {
		return toolResult(map[string]any{"ready": false, "need": need, "have": sess.Len()})
	}
	return sessionError(err)
}
