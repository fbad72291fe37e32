// Package app provides application initialization and lifecycle management
// for the enrdash server. It handles the orchestration of all major
// components including configuration loading, dataset loading, service
// initialization, and graceful shutdown procedures.
//
// # Architecture
//
// The app package follows a dependency injection pattern where all components
// are wired together at startup. This ensures loose coupling and testability.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging
//	3. Build the dataset snapshot from the source CSV
//	4. Initialize services with their dependencies
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//	7. Set up graceful shutdown handlers
//
// A dataset that fails to load at startup is fatal: the server refuses to
// start rather than serve an empty or partial snapshot. Geometry parse
// failures are the one exception, they degrade the map view only.
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals so active requests are
// completed before the process exits.
//
// # Error Handling
//
// All initialization errors are returned to the caller for proper
// handling. The app does not call os.Exit() directly, allowing
// the main function to control the exit process.
package app
