package main

// Process exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // Runtime failure (database, gateway, HTTP server)
	ExitConfigError = 2 // Missing or invalid configuration
)
