// Package version provides version information for the oracle-ark binary.
package version

// Version is the current version of oracle-ark.
const Version = "0.1.0"

// AgentString returns the User-Agent value sent with every outbound
// source request. Format: oracle-ark/{version}
func AgentString() string {
	return "oracle-ark/" + Version
}
