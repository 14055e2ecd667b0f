package server

// SummaryToolServer is the MCP surface of SummaRead.
type SummaryToolServer interface {
	// Initialize registers the tools.
	Initialize() error

	// Start serves tool calls until the transport closes.
	Start() error

	// Stop shuts the server down.
	Stop() error
}

var _ SummaryToolServer = (*MCPSummaryToolServer)(nil)
