package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	appsession "roulette-oracle/internal/app/session"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSessionTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"create_session",
			mcp.WithDescription("Start a new prediction session and return its id"),
		),
		s.handleCreateSession,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"record_spin",
			mcp.WithDescription("Record the winning number of a spin"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
			mcp.WithNumber("number", mcp.Required(), mcp.Description("Winning number, 0-36")),
		),
		s.handleRecordSpin,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"undo_spin",
			mcp.WithDescription("Remove the most recently recorded spin"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleUndoSpin,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"reset_session",
			mcp.WithDescription("Clear the spin history and the learning agent"),
			mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		),
		s.handleResetSession,
	)
}

type changeResult struct {
	Change    appsession.Change `json:"change"`
	Persisted bool              `json:"persisted"`
	Length    int               `json:"length"`
}

func (s *Server) handleCreateSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.mgr.Create(ctx)
	if err != nil {
		return sessionError(err), nil
	}
	return toolResult(map[string]any{"session_id": sess.ID}), nil
}

func (s *Server) handleRecordSpin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.session(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	raw, ok := request.GetArguments()["number"]
	if !ok {
		return toolError("invalid_request", "number is required"), nil
	}
	n, ok := wholeNumber(raw)
	if !ok {
		return toolError("invalid_outcome", "number must be an integer between 0 and 36"), nil
	}
	ch, err := sess.Append(ctx, n)
	return changeToolResult(sess, ch, err), nil
}

// wholeNumber accepts JSON numbers without a fractional part. Strings and
// fractions are rejected rather than truncated.
func wholeNumber(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.Abs(x) > math.MaxInt32 {
			return 0, false
		}
		return int(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func (s *Server) handleUndoSpin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.session(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	ch, err := sess.Undo(ctx)
	return changeToolResult(sess, ch, err), nil
}

func (s *Server) handleResetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResp := s.session(ctx, request)
	if errResp != nil {
		return errResp, nil
	}
	ch, err := sess.Reset(ctx)
	return changeToolResult(sess, ch, err), nil
}

func changeToolResult(sess *appsession.Session, ch appsession.Change, err error) *mcp.CallToolResult {
	if err != nil && !errors.Is(err, appsession.ErrPersist) {
		return sessionError(err)
	}
	return toolResult(changeResult{Change: ch, Persisted: err == nil, Length: sess.Len()})
}
