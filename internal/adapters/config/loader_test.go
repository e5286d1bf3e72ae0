package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/warm/internal/adapters/config"
	"go.trai.ch/warm/internal/core/domain"
)

const validYAML = `version: "1"
manifests:
  - Cargo.lock
caches:
  - name: registry
    path: .cargo/registry/cache
  - name: index
    path: .cargo/registry/index
  - name: build_output
    path: target
steps:
  - name: build
    cmd: [cargo, build, --release]
  - name: test
    cmd: [cargo, test, --release]
    environment:
      RUST_BACKTRACE: "1"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "warm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, validYAML)

	p, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(path), p.Root)
	assert.Equal(t, []string{"Cargo.lock"}, p.Manifests)

	require.Len(t, p.Classes, 3)
	assert.Equal(t, "registry", p.Classes[0].Name)
	assert.Equal(t, filepath.Join(p.Root, ".cargo/registry/cache"), p.Classes[0].Path)

	require.Len(t, p.Steps, 2)
	assert.Equal(t, []string{"cargo", "build", "--release"}, p.Steps[0].Command)
	assert.Equal(t, "1", p.Steps[1].Environment["RUST_BACKTRACE"])
}

func TestLoad_ExplicitRoot(t *testing.T) {
	path := writeConfig(t, `version: "1"
root: sub/project
manifests: [go.sum]
caches:
  - name: modcache
    path: /var/cache/gomod
`)

	p, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "sub/project"), p.Root)
	// Absolute cache paths are left alone.
	assert.Equal(t, "/var/cache/gomod", p.Classes[0].Path)
}

func TestLoad_ScopedClass(t *testing.T) {
	path := writeConfig(t, `version: "1"
manifests: [Cargo.lock]
caches:
  - name: target
    path: target
    scope: linux
`)

	p, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "linux", p.Classes[0].Scope)
	assert.Equal(t, "linux-target", p.Classes[0].Prefix())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "warm.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "caches: [a: b\n")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_NoManifests(t *testing.T) {
	path := writeConfig(t, `version: "1"
caches:
  - name: registry
    path: cache
`)
	_, err := config.Load(path)
	require.ErrorIs(t, err, domain.ErrNoManifests)
}

func TestLoad_DuplicateClass(t *testing.T) {
	path := writeConfig(t, `version: "1"
manifests: [Cargo.lock]
caches:
  - name: registry
    path: a
  - name: registry
    path: b
`)
	_, err := config.Load(path)
	require.ErrorIs(t, err, domain.ErrDuplicateClass)
}

func TestLoad_InvalidClassName(t *testing.T) {
	path := writeConfig(t, `version: "1"
manifests: [Cargo.lock]
caches:
  - name: "../escape"
    path: a
`)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_StepWithoutName(t *testing.T) {
	path := writeConfig(t, `version: "1"
manifests: [Cargo.lock]
caches:
  - name: registry
    path: a
steps:
  - cmd: [make]
`)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_StepWithoutCommand(t *testing.T) {
	path := writeConfig(t, `version: "1"
manifests: [Cargo.lock]
caches:
  - name: registry
    path: a
steps:
  - name: build
`)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestFileConfigLoader_JoinsCwd(t *testing.T) {
	path := writeConfig(t, validYAML)
	loader := &config.FileConfigLoader{Filename: "warm.yaml"}

	p, err := loader.Load(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, p.Classes, 3)
}
