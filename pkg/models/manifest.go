package models

import (
	"os"
	"sort"
)

// Manifest is what an expanded archive contains, derived once from the
// member filenames.
type Manifest struct {
	Archive string                  `json:"archive"`
	Prefix  string                  `json:"prefix"`
	Staging string                  `json:"staging"`
	Charset string                  `json:"charset,omitempty"`
	Members map[ArtifactKind]string `json:"members"`
}

func NewManifest(archive, staging string) *Manifest {
	return &Manifest{
		Archive: archive,
		Staging: staging,
		Members: map[ArtifactKind]string{},
	}
}

func (m *Manifest) Has(kind ArtifactKind) bool {
	_, ok := m.Members[kind]
	return ok
}

func (m *Manifest) Path(kind ArtifactKind) string {
	return m.Members[kind]
}

func (m *Manifest) Kinds() []ArtifactKind {
	kinds := make([]ArtifactKind, 0, len(m.Members))
	for k := range m.Members {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Release removes the staging directory. Safe to call more than once.
func (m *Manifest) Release() error {
	if m.Staging == "" {
		return nil
	}
	err := os.RemoveAll(m.Staging)
	m.Staging = ""
	return err
}
