package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/aelpxy/wikibak/internal/constants"
	"github.com/aelpxy/wikibak/internal/utils"
	"github.com/lucsky/cuid"
)

type Registry struct {
	Records []Record `json:"records"`
	path    string
}

func NewRegistry() (*Registry, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return NewRegistryAt(filepath.Join(homeDir, ".wikibak", "history.json")), nil
}

func NewRegistryAt(path string) *Registry {
	return &Registry{
		Records: []Record{},
		path:    path,
	}
}

func (r *Registry) Initialize() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read history: %w", err)
	}

	if err := json.Unmarshal(data, r); err != nil {
		return fmt.Errorf("failed to parse history: %w", err)
	}

	return nil
}

func (r *Registry) Save() error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := utils.AtomicWriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	return nil
}

// Start records a new in-progress run and returns it.
func (r *Registry) Start(installation, destination string, now time.Time) (*Record, error) {
	rec := Record{
		ID:           cuid.New(),
		Installation: installation,
		Destination:  destination,
		CreatedAt:    now,
		Status:       StatusInProgress,
	}
	r.Records = append(r.Records, rec)
	if n := len(r.Records) - constants.MaxHistoryRecords; n > 0 {
		r.Records = r.Records[n:]
	}
	if err := r.Save(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Registry) Get(id string) (*Record, error) {
	for i := range r.Records {
		if r.Records[i].ID == id {
			return &r.Records[i], nil
		}
	}
	return nil, fmt.Errorf("backup not found: %s", id)
}

// List returns records newest first, optionally limited to one installation.
func (r *Registry) List(installation string) []Record {
	var filtered []Record
	for _, rec := range r.Records {
		if installation == "" || rec.Installation == installation {
			filtered = append(filtered, rec)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return filtered
}

func (r *Registry) Update(rec Record) error {
	for i := range r.Records {
		if r.Records[i].ID == rec.ID {
			r.Records[i] = rec
			return r.Save()
		}
	}
	return fmt.Errorf("backup not found: %s", rec.ID)
}

func (r *Registry) Delete(id string) error {
	for i, rec := range r.Records {
		if rec.ID == id {
			r.Records = append(r.Records[:i], r.Records[i+1:]...)
			return r.Save()
		}
	}
	return fmt.Errorf("backup not found: %s", id)
}
