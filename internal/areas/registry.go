package areas

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the known dashboard areas, loaded from the embedded YAML
// file at startup. Read-only after construction.
type Registry struct {
	areas  []Area
	byName map[string]Area
}

// NewRegistry creates a new area registry from the embedded configuration
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/areas.yaml")
	if err != nil {
		return nil, fmt.Errorf("read areas config: %w", err)
	}

	var file areaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal areas config: %w", err)
	}
	if len(file.Areas) == 0 {
		return nil, fmt.Errorf("areas config defines no areas")
	}

	r := &Registry{
		areas:  file.Areas,
		byName: make(map[string]Area, len(file.Areas)),
	}
	for _, a := range file.Areas {
		r.byName[a.Name] = a
	}
	return r, nil
}

// List returns every area in configuration order.
func (r *Registry) List() []Area {
	out := make([]Area, len(r.areas))
	copy(out, r.areas)
	return out
}

// Get returns the area with the given name.
func (r *Registry) Get(name string) (Area, bool) {
	a, ok := r.byName[name]
	return a, ok
}
