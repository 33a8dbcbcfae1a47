package config

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var profileFiles embed.FS

// UploadProfile is the set of constraints applied to one upload path.
type UploadProfile struct {
	// Name is set from the map key during loading.
	Name         string   `yaml:"-" json:"name"`
	DisplayName  string   `yaml:"display_name" json:"display_name"`
	MaxBytes     int64    `yaml:"max_bytes" json:"max_bytes"`
	AllowedTypes []string `yaml:"allowed_types" json:"allowed_types"`
}

// Allows reports whether mimeType may be stored under this profile. An
// empty allow-list accepts any image type.
func (p *UploadProfile) Allows(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if len(p.AllowedTypes) == 0 {
		return strings.HasPrefix(mimeType, "image/")
	}
	for _, t := range p.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

type profileFile struct {
	Default  string                    `yaml:"default"`
	Profiles map[string]*UploadProfile `yaml:"profiles"`
}

// Profiles holds the upload profiles loaded from the embedded YAML.
type Profiles struct {
	mu       sync.RWMutex
	def      string
	profiles map[string]*UploadProfile
}

// LoadProfiles parses the embedded upload profiles.
func LoadProfiles() (*Profiles, error) {
	data, err := profileFiles.ReadFile("profiles/upload.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read upload profiles: %w", err)
	}
	return ParseProfiles(data)
}

// ParseProfiles parses profiles from YAML.
func ParseProfiles(data []byte) (*Profiles, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upload profiles: %w", err)
	}
	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("no upload profiles defined")
	}
	for name, p := range file.Profiles {
		if p == nil || p.MaxBytes <= 0 {
			return nil, fmt.Errorf("upload profile %s: max_bytes must be positive", name)
		}
		p.Name = name
	}
	if _, ok := file.Profiles[file.Default]; !ok {
		return nil, fmt.Errorf("default upload profile %q is not defined", file.Default)
	}
	return &Profiles{def: file.Default, profiles: file.Profiles}, nil
}

// Get returns the named profile; an empty name selects the default.
func (p *Profiles) Get(name string) (*UploadProfile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if name == "" {
		name = p.def
	}
	profile, ok := p.profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown upload profile: %s", name)
	}
	return profile, nil
}

// Names returns the profile names in sorted order.
func (p *Profiles) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.profiles))
	for name := range p.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
