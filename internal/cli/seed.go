package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/on-the-ground/effect_ive_store/internal/sample"
	"gopkg.in/yaml.v3"
)

// Seed describes one demo run.
type Seed struct {
	// Todos is the initial todo list of the mount.
	Todos []sample.Todo `yaml:"todos,omitempty"`

	// Remote is what the refresh effect fetches.
	Remote []sample.Todo `yaml:"remote"`

	// User is who the login effect signs in.
	User sample.User `yaml:"user"`
}

// DefaultSeed is used when no seed file is given.
func DefaultSeed() *Seed {
	return &Seed{
		Remote: []sample.Todo{{Name: "learn go"}, {Name: "write tests", Done: true}},
		User:   sample.User{Name: "alvin", Age: 18},
	}
}

// LoadSeed reads a seed YAML file, rejecting unknown fields.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &seed, nil
}

func (s *Seed) backend(delay time.Duration) sample.Backend {
	return sample.Backend{Todos: s.Remote, User: s.User, Delay: delay}
}

func (s *Seed) initialStates() map[string]any {
	if len(s.Todos) == 0 {
		return nil
	}
	return map[string]any{
		sample.TodosNamespace: sample.TodosState{DataSource: s.Todos},
	}
}
