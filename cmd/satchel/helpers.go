// Shared helpers for satchel CLI commands.
// Implements: prd007-satchel-cli (R3, R8, R9).
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/knapsack/internal/sqlite"
	"github.com/mesh-intelligence/knapsack/pkg/archive"
	"github.com/mesh-intelligence/knapsack/pkg/containers"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer backend.Detach(). Returns the attached
// backend or an error suitable for the CLI.
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := archive.Config{
		Backend: archive.BackendSQLite,
		DataDir: dataDir,
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}

// readJSONValue decodes a plain JSON document from path into containers.
// Objects become Dicts in document key order and arrays become Lists, so
// the envelope records registered container entries and iteration order
// survives a round trip. Integral numbers decode as int64, others as
// float64.
func readJSONValue(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeDocument(dec)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: trailing data after document", path)
	}
	return v, nil
}

func decodeDocument(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			d := containers.NewDict()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				val, err := decodeDocument(dec)
				if err != nil {
					return nil, err
				}
				d.Set(key, val)
			}
			// Closing brace.
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return d, nil
		case '[':
			l := containers.NewList()
			for dec.More() {
				val, err := decodeDocument(dec)
				if err != nil {
					return nil, err
				}
				l.Append(val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return l, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", t.String(), err)
		}
		return f, nil
	default:
		// string, bool, or nil.
		return t, nil
	}
}

// plainValue converts an unpacked value into a structure that
// encoding/json can marshal directly: transactional containers flatten to
// their elements, tuples and sets become arrays, and non-string mapping
// keys are rendered with their Go formatting.
func plainValue(v any) any {
	switch t := v.(type) {
	case pack.Tuple:
		return plainSlice(t)
	case pack.Set:
		out := make([]any, 0, len(t))
		for item := range t {
			out = append(out, plainValue(item))
		}
		return out
	case []any:
		return plainSlice(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plainValue(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[plainKey(k)] = plainValue(val)
		}
		return out
	case *containers.Dict:
		out := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			out[plainKey(k)] = plainValue(val)
		}
		return out
	case *containers.List:
		return plainSlice(t.Items())
	case *containers.Set:
		return plainSlice(t.Items())
	case *containers.Deque:
		return plainSlice(t.Items())
	case *containers.Heap:
		return plainSlice(t.Drain())
	}
	return v
}

func plainSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = plainValue(item)
	}
	return out
}

func plainKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
