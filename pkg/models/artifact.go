package models

type ArtifactKind string

const (
	ArtifactDatabase   ArtifactKind = "database"
	ArtifactPages      ArtifactKind = "pages"
	ArtifactImages     ArtifactKind = "images"
	ArtifactFilesystem ArtifactKind = "filesystem"
	ArtifactBundle     ArtifactKind = "bundle"
)

// Artifact is one file produced by a backup run. Charset is only set for
// database dumps.
type Artifact struct {
	Kind    ArtifactKind `json:"kind"`
	Path    string       `json:"path"`
	Charset string       `json:"charset,omitempty"`
}
