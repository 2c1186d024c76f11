package mcp

import (
	"context"
	"errors"
	"io/fs"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/modelguard/internal/checker"
	"github.com/mvp-joe/modelguard/internal/scan"
)

// FixRequest is the modelguard_fix argument set.
type FixRequest struct {
	Content    *string `json:"content"`
	Path       string  `json:"path"`
	Identifier string  `json:"identifier"`
	Apply      bool    `json:"apply"`
}

// FixResponse reports the fixes and the resulting text.
type FixResponse struct {
	File      string           `json:"file,omitempty"`
	Fixes     []scan.FixAction `json:"fixes"`
	Titles    []string         `json:"titles"`
	Content   string           `json:"content"`
	Remaining []scan.Finding   `json:"remaining"`
	Written   bool             `json:"written"`
}

// AddFixTool registers the modelguard_fix tool.
func AddFixTool(s *server.MCPServer, srv *Server) {
	tool := mcp.NewTool(
		"modelguard_fix",
		mcp.WithDescription("Insert `import <Name> from \"./models/<Name>\";` after the existing import block for a model flagged by modelguard_check. Omit identifier to import every flagged model. Files are only written when apply is true and path is given."),
		mcp.WithString("content",
			mcp.Description("Source text to fix. The fixed text is returned; nothing is written.")),
		mcp.WithString("path",
			mcp.Description("File path relative to the project root.")),
		mcp.WithString("identifier",
			mcp.Description("Model name to import (e.g. User). Empty imports all flagged models.")),
		mcp.WithBoolean("apply",
			mcp.Description("Write the fixed file back to disk (default: false).")),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
	)

	s.AddTool(tool, createFixHandler(srv))
}

func createFixHandler(srv *Server) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req FixRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var (
			outcome checker.FixOutcome
			err     error
		)
		switch {
		case req.Content != nil:
			outcome, err = srv.checker.FixText(*req.Content, req.Identifier)
			outcome.Document = req.Path

		case req.Path != "":
			path, perr := srv.resolvePath(req.Path)
			if perr != nil {
				return mcp.NewToolResultError(perr.Error()), nil
			}
			var opts []checker.FixOption
			if !req.Apply {
				opts = append(opts, checker.WithDryRun())
			}
			outcome, err = srv.checker.FixFile(ctx, path, req.Identifier, opts...)

		default:
			return mcp.NewToolResultError("content or path parameter is required"), nil
		}

		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		return marshalToolResponse(newFixResponse(outcome))
	}
}

func newFixResponse(outcome checker.FixOutcome) FixResponse {
	resp := FixResponse{
		File:      outcome.Document,
		Fixes:     outcome.Applied,
		Titles:    make([]string, 0, len(outcome.Applied)),
		Content:   outcome.Content,
		Remaining: outcome.Remaining,
		Written:   outcome.Written,
	}
	for _, fix := range outcome.Applied {
		resp.Titles = append(resp.Titles, fix.Title())
	}
	if resp.Fixes == nil {
		resp.Fixes = []scan.FixAction{}
	}
	if resp.Remaining == nil {
		resp.Remaining = []scan.Finding{}
	}
	return resp
}

// isUserError reports errors the caller can act on, as opposed to I/O failures.
func isUserError(err error) bool {
	return errors.Is(err, checker.ErrNoFindings) ||
		errors.Is(err, checker.ErrFileTooLarge) ||
		errors.Is(err, fs.ErrNotExist)
}
