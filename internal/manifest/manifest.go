// Package manifest records what a run read, how it filtered and what it
// wrote, as a YAML file next to the outputs.
package manifest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inodb/postoga/internal/filter"
	"github.com/inodb/postoga/internal/join"
)

// FileName is the manifest name inside an output directory.
const FileName = "manifest.yaml"

// Run modes.
const (
	ModeSingle     = "single"
	ModeHaplotypes = "haplotypes"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string    `yaml:"path"`
	Size    int64     `yaml:"size"`
	ModTime time.Time `yaml:"mod_time"`
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Filters mirrors filter.Predicates with plain YAML-friendly fields.
type Filters struct {
	Classes           []string `yaml:"classes,omitempty"`
	Relationships     []string `yaml:"relationships,omitempty"`
	MinOrthologyScore *float64 `yaml:"min_orthology_score,omitempty"`
	MaxParalogScore   *float64 `yaml:"max_paralog_score,omitempty"`
}

// Assembly summarizes one input assembly.
type Assembly struct {
	Name         string         `yaml:"name"`
	Input        string         `yaml:"input"`
	Joined       int            `yaml:"joined"`
	Retained     int            `yaml:"retained"`
	Genes        int            `yaml:"genes"`
	Removed      map[string]int `yaml:"removed"`
	Unclassified int            `yaml:"unclassified_projections,omitempty"`
}

// Manifest describes one run.
type Manifest struct {
	RunID      string            `yaml:"run_id"`
	Version    string            `yaml:"version"`
	Mode       string            `yaml:"mode"`
	Started    time.Time         `yaml:"started"`
	Finished   time.Time         `yaml:"finished"`
	Precedence string            `yaml:"precedence"`
	Filters    Filters           `yaml:"filters"`
	Inputs     []FileFingerprint `yaml:"inputs"`
	Assemblies []Assembly        `yaml:"assemblies"`
	Outputs    []string          `yaml:"outputs"`
}

// New starts a manifest.
func New(runID, version, mode string, started time.Time) *Manifest {
	return &Manifest{
		RunID:   runID,
		Version: version,
		Mode:    mode,
		Started: started,
	}
}

// AddInputs fingerprints input files.
func (m *Manifest) AddInputs(paths ...string) error {
	for _, p := range paths {
		fp, err := StatFile(p)
		if err != nil {
			return fmt.Errorf("fingerprint input: %w", err)
		}
		m.Inputs = append(m.Inputs, fp)
	}
	return nil
}

// SetFilters records the active predicates.
func (m *Manifest) SetFilters(p filter.Predicates) {
	m.Filters = Filters{
		Classes:       p.Classes,
		Relationships: p.Relationships,
	}
	if v, ok := p.MinOrthologyScore.Get(); ok {
		m.Filters.MinOrthologyScore = &v
	}
	if v, ok := p.MaxParalogScore.Get(); ok {
		m.Filters.MaxParalogScore = &v
	}
}

// AddAssembly records the join and filter outcome of one assembly.
func (m *Manifest) AddAssembly(name, input string, stats join.JoinStats, r *filter.DiscardReport) {
	a := Assembly{
		Name:         name,
		Input:        input,
		Joined:       stats.Records,
		Retained:     r.Retained,
		Genes:        r.UniqueGenes,
		Removed:      make(map[string]int, len(r.Stages)),
		Unclassified: stats.Unclassified,
	}
	for _, s := range r.Stages {
		a.Removed[s.Stage] = s.Removed
	}
	m.Assemblies = append(m.Assemblies, a)
}

// AddOutputs records output file names relative to the output directory.
func (m *Manifest) AddOutputs(names ...string) {
	m.Outputs = append(m.Outputs, names...)
}

// Write stores the manifest as YAML.
func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}
