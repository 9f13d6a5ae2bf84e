package settings

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileFetcher reads groups from a YAML document whose top level keys are the
// group names:
//
//	basic:
//	  enableOpenGraph: true
//	advanced:
//	  enableAutoPush: false
//
// The file is read on every Fetch so edits apply to the next request.
type FileFetcher struct {
	path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

func (f *FileFetcher) Fetch(ctx context.Context, group string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read settings file: %w", err)
	}

	var groups map[string]yaml.Node
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return false, fmt.Errorf("failed to parse settings file: %w", err)
	}

	node, ok := groups[group]
	if !ok {
		return false, nil
	}
	if err := node.Decode(v); err != nil {
		return false, fmt.Errorf("failed to decode settings group %q: %w", group, err)
	}
	return true, nil
}
