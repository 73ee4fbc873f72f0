package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	envconfig "feed-audit/internal/pkg/config"
	"feed-audit/internal/usecase/audit"
)

// overridesFile is the YAML layout of the override table:
//
//	overrides:
//	  Example Labs:
//	    - https://example.ai/news/rss.xml
//	  Jane Doe: https://jane.dev/atom.xml
//
// A file without the "overrides" key is read as the bare mapping.
type overridesFile struct {
	Overrides map[string]feedList `yaml:"overrides"`
}

// feedList accepts either one URL or a list of URLs.
type feedList []string

func (f *feedList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*f = feedList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*f = list
		return nil
	}
	return fmt.Errorf("line %d: feeds must be a URL or a list of URLs", node.Line)
}

// LoadOverrides reads the override table at path. An empty path yields an
// empty table.
func LoadOverrides(path string) (audit.OverrideTable, error) {
	if path == "" {
		return audit.OverrideTable{}, nil
	}

	// #nosec G304 -- path comes from a CLI flag or AUDIT_OVERRIDES_FILE
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	table, err := ParseOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse overrides file %s: %w", path, err)
	}
	return table, nil
}

// ParseOverrides decodes an override table and validates every URL.
func ParseOverrides(data []byte) (audit.OverrideTable, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return audit.OverrideTable{}, nil
		}
		return nil, err
	}

	raw := map[string]feedList{}
	var wrapped overridesFile
	if err := root.Decode(&wrapped); err == nil && wrapped.Overrides != nil {
		raw = wrapped.Overrides
	} else if err := root.Decode(&raw); err != nil {
		return nil, err
	}

	table := make(audit.OverrideTable, len(raw))
	var errs []error
	for name, feeds := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			errs = append(errs, errors.New("override with empty entity name"))
			continue
		}
		urls := make([]string, 0, len(feeds))
		for _, u := range feeds {
			u = strings.TrimSpace(u)
			if err := envconfig.ValidateHTTPURL(u); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				continue
			}
			urls = append(urls, u)
		}
		table[name] = urls
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return table, nil
}
