package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// URLList is the structured on-disk list of tracked product URLs,
// partitioned by source. It replaces any notion of executable URL files:
// the file is plain YAML, parsed with a real parser.
type URLList struct {
	Amazon   []string `yaml:"amazon"`
	GameStop []string `yaml:"gamestop"`
}

// All returns every tracked URL across both sources.
func (u URLList) All() []string {
	all := make([]string, 0, len(u.Amazon)+len(u.GameStop))
	all = append(all, u.GameStop...)
	all = append(all, u.Amazon...)
	return all
}

// LoadURLList reads the tracked URL file. A missing file is an empty
// list, not an error: discovery creates it on first run.
func LoadURLList(filepath string) (URLList, error) {
	data, err := os.ReadFile(filepath)
	if os.IsNotExist(err) {
		return URLList{}, nil
	}
	if err != nil {
		return URLList{}, fmt.Errorf("read urls file: %w", err)
	}
	var list URLList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return URLList{}, fmt.Errorf("unmarshal urls YAML: %w", err)
	}
	return list, nil
}

// SaveURLList writes the list back, sorted for stable diffs.
func SaveURLList(filepath string, list URLList) error {
	sort.Strings(list.Amazon)
	sort.Strings(list.GameStop)
	data, err := yaml.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal urls YAML: %w", err)
	}
	if err := os.WriteFile(filepath, data, 0o644); err != nil {
		return fmt.Errorf("write urls file: %w", err)
	}
	return nil
}

// MergeURLs adds the new URLs that are not yet in existing, returning the
// merged slice and the number actually added.
func MergeURLs(existing, discovered []string) ([]string, int) {
	seen := make(map[string]bool, len(existing))
	for _, u := range existing {
		seen[u] = true
	}
	added := 0
	for _, u := range discovered {
		if !seen[u] {
			seen[u] = true
			existing = append(existing, u)
			added++
		}
	}
	return existing, added
}
