package pack

import (
	"fmt"
	"reflect"
	"sync"
)

// Handlers holds the per-type functions that let a custom type participate
// in packing. Pack collects state into packed fields using p.PackMember;
// Create allocates a bare instance without resolving nested references;
// Unpack populates the instance in place using u.UnpackMember. The
// create/unpack split is what makes reference cycles through registered
// types resolvable (prd001-pack-core R5.2).
type Handlers struct {
	Pack   func(p *Packer, obj any) (map[string]any, error)
	Create func(fields map[string]any) (any, error)
	Unpack func(u *Unpacker, obj any, fields map[string]any) error
}

// handlerEntry is one registered type in the process-wide registry.
type handlerEntry struct {
	name string
	rt   reflect.Type
	h    Handlers
}

// registry is process-wide and append-only for the process lifetime.
// Registration happens at build time; lookups on the pack/unpack hot path
// take the read lock only.
var registry = struct {
	mu     sync.RWMutex
	byName map[string]*handlerEntry
	byType map[reflect.Type]*handlerEntry
}{
	byName: make(map[string]*handlerEntry),
	byType: make(map[reflect.Type]*handlerEntry),
}

// fullTypeName returns the default registration name for a type: package
// path plus type name, dereferencing pointers, so unrelated packages do not
// collide.
func fullTypeName(rt reflect.Type) string {
	base := rt
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.PkgPath() == "" {
		return base.Name()
	}
	return base.PkgPath() + "." + base.Name()
}

// Register adds prototype's type to the registry under its full type name.
// The prototype carries only the type; a typed nil pointer is the usual
// argument, e.g. Register((*Dict)(nil), handlers).
func Register(prototype any, h Handlers) error {
	return RegisterNamed(fullTypeName(reflect.TypeOf(prototype)), prototype, h)
}

// RegisterNamed adds prototype's type under an explicit name. Returns
// ErrDuplicateRegistration when the name is taken, even by the same type:
// re-registration guards against accidental redefinition. There is no
// removal operation.
func RegisterNamed(name string, prototype any, h Handlers) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrDuplicateRegistration)
	}
	rt := reflect.TypeOf(prototype)
	if rt == nil {
		return fmt.Errorf("%w: nil prototype for %q", ErrUnsupportedType, name)
	}
	if h.Pack == nil || h.Create == nil || h.Unpack == nil {
		return fmt.Errorf("%w: incomplete handlers for %q", ErrUnsupportedType, name)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, taken := registry.byName[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, name)
	}
	e := &handlerEntry{name: name, rt: rt, h: h}
	registry.byName[name] = e
	registry.byType[rt] = e
	return nil
}

// MustRegister is Register that panics on error, for package init blocks.
func MustRegister(prototype any, h Handlers) {
	if err := Register(prototype, h); err != nil {
		panic(err)
	}
}

// MustRegisterNamed is RegisterNamed that panics on error.
func MustRegisterNamed(name string, prototype any, h Handlers) {
	if err := RegisterNamed(name, prototype, h); err != nil {
		panic(err)
	}
}

// ResolveName returns the type registered under name. Built-in wire names
// resolve through a closed, hardcoded table without registration; anything
// else fails with ErrUnknownType.
func ResolveName(name string) (reflect.Type, error) {
	registry.mu.RLock()
	e, ok := registry.byName[name]
	registry.mu.RUnlock()
	if ok {
		return e.rt, nil
	}
	if rt, ok := builtinTypes[name]; ok {
		return rt, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// NameOf returns the registered or built-in name of v's type. v may be an
// instance or a reflect.Type. Fails with ErrUnknownType when the type was
// never registered and is not a built-in.
func NameOf(v any) (string, error) {
	rt, ok := v.(reflect.Type)
	if !ok {
		rt = reflect.TypeOf(v)
	}
	registry.mu.RLock()
	e, registered := registry.byType[rt]
	registry.mu.RUnlock()
	if registered {
		return e.name, nil
	}
	if name := builtinNameOf(rt); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnknownType, rt)
}

// lookupByType returns the handler entry for rt, if registered.
func lookupByType(rt reflect.Type) (*handlerEntry, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	e, ok := registry.byType[rt]
	return e, ok
}

// lookupByName returns the handler entry registered under name.
func lookupByName(name string) (*handlerEntry, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	e, ok := registry.byName[name]
	return e, ok
}
