package cmd

// Exit codes for the hitchain CLI
const (
	// ExitSuccess indicates every check passed
	ExitSuccess = 0

	// ExitTestFailure indicates a check did not hold
	ExitTestFailure = 1

	// ExitConfigError indicates a configuration or env file error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
