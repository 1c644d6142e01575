package mcpserver

import (
	"errors"
	"fmt"

	appsession "roulette-oracle/internal/app/session"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func sessionError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, appsession.ErrNotFound):
		return toolError("session_not_found", "no session with that id")
	case errors.Is(err, appsession.ErrInvalidOutcome):
		return toolError("invalid_outcome", "number must be between 0 and 36")
	case errors.Is(err, appsession.ErrEmptyHistory):
		return toolError("empty_history", "there is no spin to undo")
	case errors.Is(err, appsession.ErrInsufficientData):
		return toolError("insufficient_data", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
