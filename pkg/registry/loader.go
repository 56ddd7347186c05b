package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// profilesFile is the on-disk shape of a capability profiles file.
type profilesFile struct {
	Providers []CapabilityProfile `yaml:"providers"`
}

// LoadProfiles reads capability profiles from a YAML file.
//
// File format:
//
//	providers:
//	  - provider_id: openai
//	    supports_system_messages: true
//	    max_context_length: 128000
//	    supported_roles: [system, user, assistant, tool]
//	    ...
func LoadProfiles(path string) ([]CapabilityProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file %q: %w", path, err)
	}

	var pf profilesFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file %q: %w", path, err)
	}

	for i, p := range pf.Providers {
		if p.ProviderID == "" {
			return nil, fmt.Errorf("profiles file %q: entry %d is missing provider_id", path, i)
		}
		if p.MaxContextLength <= 0 {
			return nil, fmt.Errorf("profiles file %q: provider %q has non-positive max_context_length", path, p.ProviderID)
		}
	}

	return pf.Providers, nil
}

// ApplyFile loads a profiles file and applies every entry to the registry.
// Each entry is a whole-profile replacement; providers absent from the file
// keep their current profiles.
func (r *Registry) ApplyFile(path string) error {
	profiles, err := LoadProfiles(path)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		if err := r.Update(p.ProviderID, p); err != nil {
			return fmt.Errorf("failed to apply profile %q: %w", p.ProviderID, err)
		}
	}

	return nil
}
