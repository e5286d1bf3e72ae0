package domain

import "go.trai.ch/zerr"

// Step is one opaque external command the pipeline invokes, typically a
// build step followed by a test step.
type Step struct {
	Name        string
	Command     []string
	Environment map[string]string
}

// Pipeline is the validated run configuration: where the project lives,
// which files fingerprint its dependency set, which cache classes to
// restore and save, and which steps to execute in order.
type Pipeline struct {
	// Root is the project directory all patterns and paths resolve against.
	Root string
	// Manifests are glob patterns selecting the dependency-declaration files.
	Manifests []string
	// Classes are the independent cache classes, in declaration order.
	Classes []CacheClass
	// Steps run sequentially in declaration order.
	Steps []Step
}

// Validate checks the structural invariants of the pipeline.
func (p *Pipeline) Validate() error {
	if len(p.Manifests) == 0 {
		return ErrNoManifests
	}
	if len(p.Classes) == 0 {
		return ErrNoClasses
	}

	seen := make(map[string]bool, len(p.Classes))
	for _, c := range p.Classes {
		if c.Name == "" {
			return zerr.New("cache class name is empty")
		}
		if c.Path == "" {
			return zerr.With(zerr.New("cache class path is empty"), "class", c.Name)
		}
		if seen[c.Name] {
			return zerr.With(ErrDuplicateClass, "class", c.Name)
		}
		seen[c.Name] = true
	}

	for _, s := range p.Steps {
		if len(s.Command) == 0 {
			return zerr.With(zerr.New("step command is empty"), "step", s.Name)
		}
	}

	return nil
}
