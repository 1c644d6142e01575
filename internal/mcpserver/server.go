package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	appsession "roulette-oracle/internal/app/session"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "roulette-oracle"
	serverVersion = "0.1.0"

	overviewURIPrefix = "session://"
	overviewURISuffix = "/overview"
)

// Server exposes prediction sessions as MCP tools so an assistant can
// record spins and read the engine's recommendations.
type Server struct {
	mgr *appsession.Manager

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(mgr *appsession.Manager) *Server {
	mcpSrv := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		mgr:        mgr,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerSessionTools()
	s.registerViewTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			overviewURIPrefix+"{session_id}"+overviewURISuffix,
			"session_overview",
			mcp.WithTemplateDescription("History, predictions, agent state and statistics of a session"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			if !strings.HasPrefix(raw, overviewURIPrefix) || !strings.HasSuffix(raw, overviewURISuffix) {
				return nil, errors.New("unsupported resource uri")
			}
			id := strings.TrimSuffix(strings.TrimPrefix(raw, overviewURIPrefix), overviewURISuffix)
			sess, err := s.mgr.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(sess.Overview())
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: raw, MIMEType: "application/json", Text: string(payload)},
			}, nil
		},
	)
}

// session resolves the session_id argument or returns the tool error to
// send back.
func (s *Server) session(ctx context.Context, request mcp.CallToolRequest) (*appsession.Session, *mcp.CallToolResult) {
	id := strings.TrimSpace(request.GetString("session_id", ""))
	if id == "" {
		return nil, toolError("invalid_request", "session_id is required")
	}
	sess, err := s.mgr.Get(ctx, id)
	if err != nil {
		return nil, sessionError(err)
	}
	return sess, nil
}
