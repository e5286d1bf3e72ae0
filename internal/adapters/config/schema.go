package config

// Warmfile represents the structure of the warm.yaml configuration file.
type Warmfile struct {
	Version   string     `yaml:"version"`
	Root      string     `yaml:"root"`
	Manifests []string   `yaml:"manifests"`
	Caches    []CacheDTO `yaml:"caches"`
	Steps     []StepDTO  `yaml:"steps"`
}

// CacheDTO represents one cache class declaration.
type CacheDTO struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Scope optionally namespaces the class keys, e.g. per OS. Keys are
	// shared across platforms unless this is set explicitly.
	Scope string `yaml:"scope"`
}

// StepDTO represents one pipeline step declaration.
type StepDTO struct {
	Name        string            `yaml:"name"`
	Cmd         []string          `yaml:"cmd"`
	Environment map[string]string `yaml:"environment"`
}
