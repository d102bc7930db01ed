// Package file loads record batches from JSON, JSON Lines or YAML files.
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
	"github.com/custodia-labs/oslo-sync/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.RecordLoader = (*Loader)(nil)

// Loader reads records from the local filesystem.
//
// A file holds either a list of records or an object with a "records" list.
// The format is chosen by extension: .json, .jsonl/.ndjson, .yaml/.yml.
type Loader struct{}

// NewLoader creates a file record loader.
func NewLoader() *Loader {
	return &Loader{}
}

// envelope is the object form of a record file.
type envelope struct {
	Records []domain.Record `json:"records" yaml:"records"`
}

// Load returns the records at path in file order.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	var records []domain.Record
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		records, err = decodeJSON(data)
	case ".jsonl", ".ndjson":
		records, err = decodeJSONLines(data)
	case ".yaml", ".yml":
		records, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: unsupported records format %q", domain.ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func decodeJSON(data []byte) ([]domain.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var records []domain.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return env.Records, nil
}

func decodeJSONLines(data []byte) ([]domain.Record, error) {
	var records []domain.Record
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var r domain.Record
		if err := json.Unmarshal(text, &r); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, r)
	}
	return records, sc.Err()
}

func decodeYAML(data []byte) ([]domain.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var records []domain.Record
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}
	var env envelope
	if err := root.Decode(&env); err != nil {
		return nil, err
	}
	return env.Records, nil
}
