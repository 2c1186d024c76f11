package mcp

import (
	"context"
	"errors"
	"io/fs"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CheckRequest is the modelguard_check argument set.
type CheckRequest struct {
	Content *string `json:"content"`
	Path    string  `json:"path"`
}

// AddCheckTool registers the modelguard_check tool.
func AddCheckTool(s *server.MCPServer, srv *Server) {
	tool := mcp.NewTool(
		"modelguard_check",
		mcp.WithDescription("Find capitalized model identifiers (e.g. User.findOne) used in a JavaScript/TypeScript file without an import or require. Pass either the file content or a path inside the project."),
		mcp.WithString("content",
			mcp.Description("Source text to check. Takes precedence over reading path from disk.")),
		mcp.WithString("path",
			mcp.Description("File path relative to the project root. Used as the document name when content is given.")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createCheckHandler(srv))
}

func createCheckHandler(srv *Server) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req CheckRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if req.Content != nil {
			doc := req.Path
			if doc == "" {
				doc = "untitled"
			}
			return marshalToolResponse(srv.checker.CheckText(doc, *req.Content))
		}

		if req.Path == "" {
			return mcp.NewToolResultError("content or path parameter is required"), nil
		}

		path, err := srv.resolvePath(req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := srv.checker.CheckFile(ctx, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		return marshalToolResponse(result)
	}
}
