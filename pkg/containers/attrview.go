package containers

// AttrView exposes a Dict through string keys only, for callers treating a
// Dict as a record of named fields. All mutations go through the underlying
// Dict, so transactions on the Dict cover the view.
type AttrView struct {
	dict *Dict
}

// Attrs returns a string-keyed view over d. A nil d gets a fresh Dict.
func Attrs(d *Dict) *AttrView {
	if d == nil {
		d = NewDict()
	}
	return &AttrView{dict: d}
}

// Dict returns the underlying Dict.
func (v *AttrView) Dict() *Dict {
	return v.dict
}

// Get returns the value stored under name.
func (v *AttrView) Get(name string) (any, bool) {
	return v.dict.Get(name)
}

// GetDefault returns the value stored under name, or fallback when absent.
func (v *AttrView) GetDefault(name string, fallback any) any {
	return v.dict.GetDefault(name, fallback)
}

// Set stores value under name.
func (v *AttrView) Set(name string, value any) {
	v.dict.Set(name, value)
}

// Del removes name, reporting whether it was present.
func (v *AttrView) Del(name string) bool {
	return v.dict.Delete(name)
}

// Has reports whether name is present.
func (v *AttrView) Has(name string) bool {
	return v.dict.Has(name)
}

// Names returns the field names in insertion order, skipping non-string
// keys stored through the Dict directly.
func (v *AttrView) Names() []string {
	keys := v.dict.Keys()
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if s, ok := k.(string); ok {
			names = append(names, s)
		}
	}
	return names
}
