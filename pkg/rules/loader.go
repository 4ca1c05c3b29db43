package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// overrideDoc is the on-disk shape for a partial rule override: every field
// is optional and, if present, replaces the corresponding Default() field
// wholesale (table fields are not merged key-by-key).
type overrideDoc struct {
	WaterLevel       *float64 `yaml:"waterLevel"`
	SandLevel        *float64 `yaml:"sandLevel"`
	ParkChance       *float64 `yaml:"parkChance"`
	ZoneChance       *float64 `yaml:"zoneChance"`
	ZoneLevel2Chance *float64 `yaml:"zoneLevel2Chance"`
	ZoneLevel3Chance *float64 `yaml:"zoneLevel3Chance"`
	ExtraConnections *int     `yaml:"extraConnections"`
}

// Loader provides cached loading of named rule-table overrides from a base
// directory, analogous to a theme pack loader: a named override is read
// once from <baseDir>/<name>.yaml and reused for the life of the process.
type Loader struct {
	baseDir string
	mu      sync.RWMutex
	cache   map[string]Table
}

// NewLoader creates a rule-table loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{baseDir: baseDir, cache: make(map[string]Table)}
}

// Load returns the named rule table, applying baseDir/<name>.yaml on top of
// Default(). Results are cached.
func (l *Loader) Load(name string) (Table, error) {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return Table{}, fmt.Errorf("rules: invalid override name %q", name)
	}

	l.mu.RLock()
	if t, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return t, nil
	}
	l.mu.RUnlock()

	path := filepath.Join(l.baseDir, name+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("rules: reading override %q: %w", name, err)
	}

	var doc overrideDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Table{}, fmt.Errorf("rules: parsing override %q: %w", name, err)
	}

	t := Default()
	applyOverride(&t, doc)

	l.mu.Lock()
	l.cache[name] = t
	l.mu.Unlock()

	return t, nil
}

func applyOverride(t *Table, doc overrideDoc) {
	if doc.WaterLevel != nil {
		t.WaterLevel = *doc.WaterLevel
	}
	if doc.SandLevel != nil {
		t.SandLevel = *doc.SandLevel
	}
	if doc.ParkChance != nil {
		t.ParkChance = *doc.ParkChance
	}
	if doc.ZoneChance != nil {
		t.ZoneChance = *doc.ZoneChance
	}
	if doc.ZoneLevel2Chance != nil {
		t.ZoneLevel2Chance = *doc.ZoneLevel2Chance
	}
	if doc.ZoneLevel3Chance != nil {
		t.ZoneLevel3Chance = *doc.ZoneLevel3Chance
	}
	if doc.ExtraConnections != nil {
		t.ExtraConnections = *doc.ExtraConnections
	}
}
