// Package config provides the configuration loader for warm.
package config

import (
	"os"
	"path/filepath"
	"regexp"

	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// classNameRe restricts class names and scopes to characters that are safe
// inside cache keys and entry filenames.
var classNameRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given working directory.
func (l *FileConfigLoader) Load(cwd string) (*domain.Pipeline, error) {
	return Load(filepath.Join(cwd, l.Filename))
}

// Load reads a configuration file from the given path and returns the
// validated pipeline.
func Load(path string) (*domain.Pipeline, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var wf Warmfile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	root := wf.Root
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(path), root)
	}

	p := &domain.Pipeline{
		Root:      root,
		Manifests: wf.Manifests,
	}

	for _, dto := range wf.Caches {
		if !classNameRe.MatchString(dto.Name) {
			return nil, zerr.With(zerr.New("invalid cache class name"), "class", dto.Name)
		}
		if dto.Scope != "" && !classNameRe.MatchString(dto.Scope) {
			return nil, zerr.With(zerr.New("invalid cache class scope"), "class", dto.Name)
		}

		cachePath := dto.Path
		if cachePath != "" && !filepath.IsAbs(cachePath) {
			cachePath = filepath.Join(root, cachePath)
		}
		p.Classes = append(p.Classes, domain.CacheClass{
			Name:  dto.Name,
			Path:  cachePath,
			Scope: dto.Scope,
		})
	}

	for i, dto := range wf.Steps {
		name := dto.Name
		if name == "" {
			return nil, zerr.With(zerr.New("step name is empty"), "index", i)
		}
		p.Steps = append(p.Steps, domain.Step{
			Name:        name,
			Command:     dto.Cmd,
			Environment: dto.Environment,
		})
	}

	if err := p.Validate(); err != nil {
		return nil, zerr.Wrap(err, "invalid configuration")
	}
	return p, nil
}
