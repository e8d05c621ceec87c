package client

import "github.com/Masterminds/semver/v3"

// VersionInfo describes the remote service build as reported by the version
// endpoint.
type VersionInfo struct {
	Version  string `json:"version"`
	Branch   string `json:"branch,omitempty"`
	Dirty    string `json:"dirty,omitempty"`
	Revision string `json:"revision,omitempty"`
}

// Semver parses the reported version string. The bootstrap handshake only
// checks that the field is present; parsing is a convenience for callers that
// gate behavior on the service version.
func (v *VersionInfo) Semver() (*semver.Version, error) {
	return semver.NewVersion(v.Version)
}
