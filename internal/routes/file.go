package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

type ruleFile struct {
	Rules []Rule `json:"rules"`
}

// LoadFile reads rules from a JSON document of the form
//
//	{"rules": [{"method": "GET", "pattern": "/hc", "class": "public"}]}
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	file := ruleFile{}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse json of '%s': %w", path, err)
	}
	return file.Rules, nil
}

// Watch loads the rules file into the table, then reloads it whenever it
// changes until ctx is done. A file that fails to load or validate leaves
// the current rules in place.
func (t *Table) Watch(
	ctx context.Context,
	path string,
) error {
	if err := t.reload(ctx, path); err != nil {
		return err
	}

	return watchFile(ctx, path, t.reloadDelay, t.logger, func() {
		if err := t.reload(ctx, path); err != nil {
			t.logger.Error(ctx, "route rules reload failed; keeping previous rules", "file", path, "error", err)
		}
	})
}

func (t *Table) reload(
	ctx context.Context,
	path string,
) error {
	rules, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := t.Replace(rules); err != nil {
		return err
	}
	t.logger.Info(ctx, "loaded route rules", "file", path, "count", len(rules))
	return nil
}
