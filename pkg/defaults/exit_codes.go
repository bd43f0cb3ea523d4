package defaults

// Exit codes for the CLI.
const (
	ExitSuccess       = 0 // Clean exit
	ExitScanFailed    = 1 // Scan ended in ERROR or ABORTED
	ExitUserError     = 2 // Invalid arguments or configuration
	ExitNetworkError  = 3 // Scanning service unreachable
	ExitInternalError = 4 // Unexpected internal error
)
