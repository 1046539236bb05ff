package pack

// Entry is one reference-table record: the declared type name and the
// packed fields for a single boxed value.
type Entry struct {
	Type string `json:"_type"`
	Data any    `json:"_data"`
}

// Envelope is the unit of persistence and transmission produced by Pack and
// consumed by Unpack. It is fully JSON-representable: the only leaves are
// strings, numbers, booleans, null, sequences, and mappings.
type Envelope struct {
	Table map[string]*Entry `json:"table"`
	Meta  map[string]any    `json:"meta"`
	Head  any               `json:"head"`
}
