package yaml

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"peertech.de/keel/pkg/resource"
)

// Manifest represents the complete YAML manifest structure containing
// variables for templating and the list of declared resources.
type Manifest struct {
	Variables map[string]any `yaml:"variables" json:"variables"`
	Resources []Resource     `yaml:"resources" json:"resources"`
}

// Resource represents a single resource definition in the manifest.
type Resource struct {
	Name      string   `yaml:"name" json:"name"`
	Deps      []string `yaml:"deps" json:"deps"`
	Tools     []string `yaml:"tools" json:"tools"`
	CreateCmd string   `yaml:"create_cmd" json:"create_cmd"`
	DeleteCmd string   `yaml:"delete_cmd" json:"delete_cmd"`
}

// Loader implements the manifest.Loader interface for YAML-based manifests.
type Loader struct{}

// Load reads and parses a YAML manifest into a resource collection.
func (l *Loader) Load(ctx context.Context, path string) (resource.Collection, error) {
	m, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("manifest load error [%s]: %w", path, err)
	}

	resources := make([]resource.Resource, 0, len(m.Resources))
	for _, spec := range m.Resources {
		resources = append(resources, resource.Resource{
			Name:      spec.Name,
			Deps:      spec.Deps,
			Tools:     spec.Tools,
			CreateCmd: spec.CreateCmd,
			DeleteCmd: spec.DeleteCmd,
		})
	}

	c, err := resource.NewCollection(resources...)
	if err != nil {
		return nil, fmt.Errorf("manifest error [%s]: %w", path, err)
	}

	return c, nil
}

// load reads and processes a YAML manifest file with template variable
// substitution. Template syntax uses {{ }} delimiters; the variables block of
// the manifest itself provides the values.
func load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest file error: %w", err)
	}

	// Initial parsing to extract variables
	var preliminary struct {
		Variables map[string]any `yaml:"variables"`
	}
	if err := yaml.Unmarshal(raw, &preliminary); err != nil {
		return nil, fmt.Errorf("parse variables error: %w", err)
	}

	// Substitute variables
	tmpl, err := template.New("manifest").Delims("{{", "}}").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, preliminary.Variables); err != nil {
		return nil, fmt.Errorf("template execution error: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(buf.Bytes(), &m); err != nil {
		return nil, fmt.Errorf("final manifest parse error: %w", err)
	}

	return &m, nil
}
