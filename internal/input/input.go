// Package input reads product rows from JSON and YAML files and validates them.
package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/trendgate/schema"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// StdinPath selects standard input instead of a file.
const StdinPath = "-"

// FormatOf infers the input format from a file extension. Anything that is not
// YAML is read as JSON.
func FormatOf(path string) schema.InputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.YAMLInput
	default:
		return schema.JSONInput
	}
}

// Decode reads product rows in the given format. The document is either a list
// of rows or a single row.
func Decode(r io.Reader, format schema.InputFormat) ([]schema.ProductRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch format {
	case schema.YAMLInput:
		return decodeYAML(trimmed)
	case schema.JSONInput:
		return decodeJSON(trimmed)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

func decodeJSON(data []byte) ([]schema.ProductRow, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if data[0] == '{' {
		var row schema.ProductRow
		if err := dec.Decode(&row); err != nil {
			return nil, err
		}
		return []schema.ProductRow{row}, nil
	}
	var rows []schema.ProductRow
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func decodeYAML(data []byte) ([]schema.ProductRow, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
		var row schema.ProductRow
		if err := node.Decode(&row); err != nil {
			return nil, err
		}
		return []schema.ProductRow{row}, nil
	}
	var rows []schema.ProductRow
	if err := node.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadFile reads all rows from one path. StdinPath reads JSON from os.Stdin.
func ReadFile(path string) ([]schema.ProductRow, error) {
	if path == StdinPath {
		return Decode(bufio.NewReader(os.Stdin), schema.JSONInput)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := Decode(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}

// Load reads every path with at most workers files in flight and returns the
// rows in path order. Row validation is left to the caller so that one bad
// row never discards a file.
func Load(ctx context.Context, paths []string, workers int) ([]schema.ProductRow, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files given")
	}
	if workers <= 0 {
		workers = 1
	}

	perFile := make([][]schema.ProductRow, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := ReadFile(path)
			if err != nil {
				return err
			}
			perFile[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, rows := range perFile {
		total += len(rows)
	}
	out := make([]schema.ProductRow, 0, total)
	for _, rows := range perFile {
		out = append(out, rows...)
	}
	return out, nil
}
