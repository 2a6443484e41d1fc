package mcp

import "github.com/1broseidon/quietwm/internal/wm"

// StatusInput is the input for the get_status tool.
type StatusInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	PID         int    `json:"pid"`
	Display     string `json:"display"`
	Uptime      string `json:"uptime"`
	Screens     int    `json:"screens"`
	Clients     int    `json:"clients"`
	Current     string `json:"current,omitempty"`
	ActiveGroup int    `json:"active_group"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Group         *int `json:"group,omitempty" jsonschema:"Only list windows in this group (0-9)"`
	IncludeHidden bool `json:"include_hidden,omitempty" jsonschema:"Include hidden (iconified) windows (default: false)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []wm.ClientInfo `json:"windows"`
}

// SearchWindowsInput is the input for the search_windows tool.
type SearchWindowsInput struct {
	Query string `json:"query" jsonschema:"Text matched against window labels, titles and classes"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default: 10)"`
}

// SearchWindowsOutput is the output for the search_windows tool.
type SearchWindowsOutput struct {
	Results []wm.SearchResult `json:"results"`
}

// ExecCommandInput is the input for the exec_command tool.
type ExecCommandInput struct {
	Command string `json:"command" jsonschema:"Command line to start, split on blanks without shell quoting"`
}

// InvokeFunctionInput is the input for the invoke_function tool.
type InvokeFunctionInput struct {
	Function string `json:"function" jsonschema:"Bindable function name, for example group2, maximize or restart"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// AckOutput is returned by tools that only report success.
type AckOutput struct {
	OK bool `json:"ok"`
}
