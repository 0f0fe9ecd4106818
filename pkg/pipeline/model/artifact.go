package model

import "strings"

// LatestVersion is the version marker resolved by the artifact store to the newest version.
const LatestVersion = "latest"

// ArtifactRef names an artifact produced by one step and consumed by another.
type ArtifactRef struct {
	Name    string
	Version string
	// External is set for references taken from configuration rather than produced by a pipeline step.
	External bool
}

// Latest returns a reference to the newest version of name.
func Latest(name string) ArtifactRef {
	return ArtifactRef{Name: name, Version: LatestVersion}
}

// Exact returns an unversioned reference to name.
func Exact(name string) ArtifactRef {
	return ArtifactRef{Name: name}
}

// String renders the reference the way the artifact store expects it: name or name:version.
func (a ArtifactRef) String() string {
	if a.Version == "" {
		return a.Name
	}

	return a.Name + ":" + a.Version
}

// ParseArtifactRef splits ref on its last colon.
func ParseArtifactRef(ref string) ArtifactRef {
	idx := strings.LastIndex(ref, ":")
	if idx < 0 {
		return ArtifactRef{Name: ref}
	}

	return ArtifactRef{Name: ref[:idx], Version: ref[idx+1:]}
}
