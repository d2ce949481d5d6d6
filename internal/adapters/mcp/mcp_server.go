// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/text/language"

	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/ports"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server        *server.MCPServer
	stateProvider ports.StateProvider
	lang          language.Tag
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewServer creates a new MCP server instance. Messages are rendered in lang.
func NewServer(stateProvider ports.StateProvider, lang language.Tag) *Server {
	s := &Server{
		stateProvider: stateProvider,
		lang:          lang,
	}

	s.server = server.NewMCPServer(
		"gitstate",
		"1.0.0",
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	// Tool: get_file_state
	fileStateTool := mcp.NewTool(
		"get_file_state",
		mcp.WithDescription("Get the source-control state of one file: status, lock, display text, icon and allowed operations"),
		mcp.WithString(
			"path",
			mcp.Required(),
			mcp.Description("File path, relative to the repository root or absolute"),
		),
	)
	s.server.AddTool(fileStateTool, s.handleGetFileState)

	// Tool: list_file_states
	listTool := mcp.NewTool(
		"list_file_states",
		mcp.WithDescription("List the files with a notable state: changed, locked, outdated or conflicted"),
		mcp.WithString(
			"query",
			mcp.Description("Optional fuzzy filter on the path"),
		),
		mcp.WithBoolean(
			"modified_only",
			mcp.Description("Only list files with changes to commit"),
		),
	)
	s.server.AddTool(listTool, s.handleListFileStates)

	// Tool: refresh_status
	s.server.AddTool(
		mcp.NewTool(
			"refresh_status",
			mcp.WithDescription("Re-read the working copy, locks and upstream, then summarize"),
		),
		s.handleRefreshStatus,
	)

	// Tool: get_file_history
	historyTool := mcp.NewTool(
		"get_file_history",
		mcp.WithDescription("Get the revision history of a file, newest first"),
		mcp.WithString(
			"path",
			mcp.Required(),
			mcp.Description("File path, relative to the repository root or absolute"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Maximum number of revisions (default: 20)"),
		),
	)
	s.server.AddTool(historyTool, s.handleGetFileHistory)

	// Tool: get_merge_info
	mergeInfoTool := mcp.NewTool(
		"get_merge_info",
		mcp.WithDescription("Get the merge base and incoming revision of a conflicted file"),
		mcp.WithString(
			"path",
			mcp.Required(),
			mcp.Description("File path, relative to the repository root or absolute"),
		),
	)
	s.server.AddTool(mergeInfoTool, s.handleGetMergeInfo)

	// Tool: get_checkin_candidates
	s.server.AddTool(
		mcp.NewTool(
			"get_checkin_candidates",
			mcp.WithDescription("List the files that belong in the next commit"),
		),
		s.handleGetCheckInCandidates,
	)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

// stateData renders a state for tool output.
func (s *Server) stateData(st *domain.FileState) map[string]interface{} {
	data := map[string]interface{}{
		"path":            st.Path,
		"status":          string(st.WorkingCopy),
		"lock":            string(st.Lock),
		"locking_enabled": st.LockingEnabled,
		"current":         st.IsCurrent(),
		"modified":        st.IsModified(),
		"display_name":    st.DisplayName().Localize(s.lang),
		"tooltip":         st.DisplayTooltip().Localize(s.lang),
		"icon":            string(st.IconKey()),
		"capabilities":    st.Capabilities(),
		"history_size":    st.HistorySize(),
		"observed_at":     st.Timestamp.Format("2006-01-02T15:04:05"),
	}
	if owner := st.LockedBy(); owner != "" {
		data["lock_owner"] = owner
	}
	return data
}

func (s *Server) statesData(states []*domain.FileState) []map[string]interface{} {
	list := make([]map[string]interface{}, 0, len(states))
	for _, st := range states {
		list = append(list, s.stateData(st))
	}
	return list
}

func textResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// handleGetFileState handles the get_file_state tool.
func (s *Server) handleGetFileState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required: " + err.Error()), nil
	}

	st, err := s.stateProvider.GetFileState(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get file state: %v", err)), nil
	}

	return textResult(s.stateData(st))
}

// handleListFileStates handles the list_file_states tool.
func (s *Server) handleListFileStates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := ports.StateFilter{
		Query:        request.GetString("query", ""),
		ModifiedOnly: request.GetBool("modified_only", false),
	}

	states, err := s.stateProvider.ListFileStates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list file states: %w", err)
	}

	result := map[string]interface{}{
		"files":       s.statesData(states),
		"total_count": len(states),
	}
	if filter.Query != "" {
		result["query"] = filter.Query
	}
	if filter.ModifiedOnly {
		result["modified_only"] = true
	}

	return textResult(result)
}

// handleRefreshStatus handles the refresh_status tool.
func (s *Server) handleRefreshStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.stateProvider.Refresh(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to refresh: %v", err)), nil
	}

	counts := make(map[string]int)
	var outdated, lockedByOther, conflicted int
	for _, st := range snap.Sorted() {
		counts[string(st.WorkingCopy)]++
		if !st.IsCurrent() {
			outdated++
		}
		if st.IsCheckedOutByOther(nil) {
			lockedByOther++
		}
		if st.IsConflicted() {
			conflicted++
		}
	}

	return textResult(map[string]interface{}{
		"root":            snap.Root,
		"snapshot_id":     snap.ID,
		"taken_at":        snap.TakenAt.Format("2006-01-02T15:04:05"),
		"total_count":     snap.Len(),
		"by_status":       counts,
		"outdated":        outdated,
		"locked_by_other": lockedByOther,
		"conflicted":      conflicted,
	})
}

// handleGetFileHistory handles the get_file_history tool.
func (s *Server) handleGetFileHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required: " + err.Error()), nil
	}
	limit := int(request.GetFloat("limit", 0))

	revs, err := s.stateProvider.GetFileHistory(ctx, path, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
	}

	return textResult(map[string]interface{}{
		"path":        path,
		"revisions":   revs,
		"total_count": len(revs),
	})
}

// handleGetMergeInfo handles the get_merge_info tool.
func (s *Server) handleGetMergeInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required: " + err.Error()), nil
	}

	info, err := s.stateProvider.GetMergeInfo(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get merge info: %v", err)), nil
	}

	return textResult(info)
}

// handleGetCheckInCandidates handles the get_checkin_candidates tool.
func (s *Server) handleGetCheckInCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	states, err := s.stateProvider.GetCheckInCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in candidates: %w", err)
	}

	paths := make([]string, 0, len(states))
	for _, st := range states {
		paths = append(paths, st.Path)
	}

	return textResult(map[string]interface{}{
		"paths":       paths,
		"files":       s.statesData(states),
		"total_count": len(states),
	})
}
