package pack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ToJSON renders an envelope as JSON text. The rendering is lossless for
// the envelope grammar: every leaf is a string, number, boolean, null,
// sequence, or mapping.
func ToJSON(env *Envelope) (string, error) {
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return string(out), nil
}

// FromJSON parses envelope JSON text. Numbers are decoded through
// json.Number and normalized so integral values come back as int64 rather
// than float64, preserving key and value types across the wire.
func FromJSON(text string) (*Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	env.Head = normalizeNumbers(env.Head)
	env.Meta, _ = normalizeNumbers(env.Meta).(map[string]any)
	for _, ent := range env.Table {
		if ent != nil {
			ent.Data = normalizeNumbers(ent.Data)
		}
	}
	return &env, nil
}

// PackToJSON packs root and renders the envelope in one step, the usual
// path for callers that persist or transmit the result.
func PackToJSON(root any) (string, error) {
	env, err := Pack(root)
	if err != nil {
		return "", err
	}
	return ToJSON(env)
}

// UnpackFromJSON parses envelope JSON text and reconstructs the graph.
func UnpackFromJSON(text string) (any, error) {
	env, err := FromJSON(text)
	if err != nil {
		return nil, err
	}
	return Unpack(env)
}

// Save writes an envelope to path as JSON.
func Save(path string, env *Envelope) error {
	text, err := ToJSON(env)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// Load reads an envelope previously written with Save.
func Load(path string) (*Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read envelope: %w", err)
	}
	return FromJSON(string(data))
}

// DeepCopy produces a deep copy of v by packing and unpacking it, the same
// round trip persistence uses, so sharing and cycles inside v are
// reproduced in the copy.
func DeepCopy(v any) (any, error) {
	env, err := Pack(v)
	if err != nil {
		return nil, err
	}
	return Unpack(env)
}

// normalizeNumbers rewrites decoded json.Number leaves into int64 when the
// literal is integral and float64 otherwise, recursing through sequences
// and mappings.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		for i, x := range t {
			t[i] = normalizeNumbers(x)
		}
		return t
	case map[string]any:
		for k, x := range t {
			t[k] = normalizeNumbers(x)
		}
		return t
	}
	return v
}
