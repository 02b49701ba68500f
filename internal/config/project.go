package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the default project manifest name the compilation driver
// looks for at a namespace tree's root directory.
const ProjectFile = "quill.yaml"

// Project is the top-level quill.yaml configuration: which directory holds
// the namespace tree's root, and resolver tuning knobs. Grounded on
// funvibe-funxy/internal/ext/config.go's yaml.v3-backed Config struct.
type Project struct {
	// Root is the directory walked to build the NamespaceTree (spec.md
	// §4.3). Defaults to "." when the manifest omits it.
	Root string `yaml:"root,omitempty"`

	// MaxAttempts is passed to Resolver.ResolvePrepared, which accepts it
	// but does not enforce it. Defaults to DefaultMaxAttempts.
	MaxAttempts int `yaml:"max_attempts,omitempty"`
}

// LoadProject reads and parses a quill.yaml manifest at path.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	p.applyDefaults()
	return &p, nil
}

func (p *Project) applyDefaults() {
	if p.Root == "" {
		p.Root = "."
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
}

// DefaultProject returns a Project with every field at its default, for
// callers that have no quill.yaml on disk.
func DefaultProject() *Project {
	p := &Project{}
	p.applyDefaults()
	return p
}
