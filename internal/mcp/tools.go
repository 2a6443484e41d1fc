package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/quietwm/internal/wm"
)

const defaultSearchLimit = 10

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.backend.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		PID:         st.PID,
		Display:     st.Display,
		Uptime:      st.Uptime().String(),
		Screens:     st.Screens,
		Clients:     st.Clients,
		Current:     st.Current,
		ActiveGroup: st.ActiveGroup,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	if args.Group != nil && (*args.Group < 0 || *args.Group >= wm.NumGroups) {
		return nil, ListWindowsOutput{}, fmt.Errorf("group must be between 0 and %d", wm.NumGroups-1)
	}
	clients, err := s.backend.ListClients()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: []wm.ClientInfo{}}
	for _, c := range clients {
		if c.Hidden && !args.IncludeHidden {
			continue
		}
		if args.Group != nil && c.Group != *args.Group {
			continue
		}
		out.Windows = append(out.Windows, c)
	}
	return nil, out, nil
}

func (s *Server) handleSearchWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args SearchWindowsInput) (*mcpsdk.CallToolResult, SearchWindowsOutput, error) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return nil, SearchWindowsOutput{}, fmt.Errorf("query is required")
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	results, err := s.backend.SearchClients(query)
	if err != nil {
		return nil, SearchWindowsOutput{}, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []wm.SearchResult{}
	}
	return nil, SearchWindowsOutput{Results: results}, nil
}

func (s *Server) handleExecCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args ExecCommandInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if strings.TrimSpace(args.Command) == "" {
		return nil, AckOutput{}, fmt.Errorf("command is required")
	}
	if err := s.backend.Exec(args.Command); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleInvokeFunction(_ context.Context, _ *mcpsdk.CallToolRequest, args InvokeFunctionInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if !wm.IsAction(args.Function) {
		return nil, AckOutput{}, fmt.Errorf("unknown function %q", args.Function)
	}
	if err := s.backend.Invoke(args.Function); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, AckOutput, error) {
	if err := s.backend.Reload(); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}
