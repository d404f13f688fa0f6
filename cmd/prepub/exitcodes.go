package main

// Exit codes shared by all prepub commands.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, invalid values)
	ExitDataError   = 3 // Data error (malformed API response, validation failure)
)
