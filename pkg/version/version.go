// Package version provides version information for the rain-oracle-server application.
package version

// Version is the current version of the rain-oracle-server application.
const Version = "0.1.0"

// AgentString returns the full agent string with versioning.
// Format: rain-oracle-server/v{version}
func AgentString() string {
	return "rain-oracle-server/v" + Version
}
