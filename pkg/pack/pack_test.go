package pack

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node is a registered test type with a mutable link, for exercising the
// two-phase create-then-populate protocol.
type node struct {
	name string
	next *node
}

func init() {
	MustRegisterNamed("test.node", (*node)(nil), Handlers{
		Pack: func(p *Packer, obj any) (map[string]any, error) {
			n := obj.(*node)
			next, err := p.PackMember(n.next)
			if err != nil {
				return nil, err
			}
			return map[string]any{"name": n.name, "next": next}, nil
		},
		Create: func(fields map[string]any) (any, error) {
			return &node{}, nil
		},
		Unpack: func(u *Unpacker, obj any, fields map[string]any) error {
			n := obj.(*node)
			n.name, _ = fields["name"].(string)
			next, err := u.UnpackMember(fields["next"])
			if err != nil {
				return err
			}
			if next != nil {
				n.next = next.(*node)
			}
			return nil
		},
	})
}

func packUnpack(t *testing.T, v any) any {
	t.Helper()
	env, err := Pack(v)
	require.NoError(t, err)
	out, err := Unpack(env)
	require.NoError(t, err)
	return out
}

func TestPrimitivesPassThrough(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "nil", in: nil},
		{name: "string", in: "plain"},
		{name: "empty string", in: ""},
		{name: "bool", in: true},
		{name: "int", in: 42},
		{name: "negative int", in: -7},
		{name: "float", in: 3.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Pack(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.in, env.Head)
			assert.Empty(t, env.Table)

			out, err := Unpack(env)
			require.NoError(t, err)
			assert.Equal(t, tt.in, out)
		})
	}
}

func TestStringEscaping(t *testing.T) {
	for _, s := range []string{"<>", "<>1", "<>:str", "<>anything"} {
		t.Run(s, func(t *testing.T) {
			env, err := Pack(s)
			require.NoError(t, err)

			head, ok := env.Head.(string)
			require.True(t, ok)
			assert.NotEqual(t, s, head, "literal must be boxed, not inlined")
			require.Len(t, env.Table, 1)
			assert.Equal(t, "str", env.Table[head].Type)

			out, err := Unpack(env)
			require.NoError(t, err)
			assert.Equal(t, s, out)
		})
	}
}

func TestBuiltinRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{name: "bytes", in: []byte{0, 1, 127, 128, 255}},
		{name: "complex", in: complex(1.5, -2.5)},
		{name: "range", in: Range{Start: 0, Stop: 10, Step: 2}},
		{name: "tuple", in: Tuple{"a", 1, true}},
		{name: "nested tuple", in: Tuple{Tuple{1}, Tuple{2}}},
		{name: "list", in: []any{"x", nil, 3}},
		{name: "set", in: NewSet("a", "b")},
		{name: "dict", in: map[any]any{"k": "v", 7: "seven"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, packUnpack(t, tt.in))
		})
	}
}

func TestTypeReferences(t *testing.T) {
	env, err := Pack(reflect.TypeOf(""))
	require.NoError(t, err)
	assert.Equal(t, "<>:str", env.Head)
	assert.Empty(t, env.Table, "type references carry no table entry")

	out, err := Unpack(env)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(""), out)

	out = packUnpack(t, reflect.TypeOf(Tuple(nil)))
	assert.Equal(t, reflect.TypeOf(Tuple(nil)), out)
}

func TestSharedReferencesDeduplicate(t *testing.T) {
	shared := []any{"payload"}
	root := []any{shared, shared}

	env, err := Pack(root)
	require.NoError(t, err)
	// one entry for the root, one for the shared list
	assert.Len(t, env.Table, 2)

	out, err := Unpack(env)
	require.NoError(t, err)
	s := out.([]any)
	a, b := s[0].([]any), s[1].([]any)
	a[0] = "mutated"
	assert.Equal(t, "mutated", b[0], "shared reference must stay aliased")
}

func TestDistinctEqualValuesStaySeparate(t *testing.T) {
	root := []any{[]any{"x"}, []any{"x"}}

	env, err := Pack(root)
	require.NoError(t, err)
	assert.Len(t, env.Table, 3)

	out := packUnpack(t, root).([]any)
	a, b := out[0].([]any), out[1].([]any)
	a[0] = "mutated"
	assert.Equal(t, "x", b[0])
}

func TestDistinctEmptySlicesStaySeparate(t *testing.T) {
	// Distinct zero-length slices share a data pointer in the runtime,
	// so they must not deduplicate to one entry.
	root := []any{[]any{}, []any{}, Tuple{}}

	env, err := Pack(root)
	require.NoError(t, err)
	assert.Len(t, env.Table, 4)

	out := packUnpack(t, root).([]any)
	assert.Empty(t, out[0])
	assert.Empty(t, out[1])
	assert.Empty(t, out[2])
}

func TestSelfReferentialList(t *testing.T) {
	l := make([]any, 2)
	l[0] = "head"
	l[1] = l

	out := packUnpack(t, l).([]any)
	assert.Equal(t, "head", out[0])
	inner := out[1].([]any)
	inner[0] = "mutated"
	assert.Equal(t, "mutated", out[0], "self reference must alias the same backing array")
}

func TestSelfReferentialDict(t *testing.T) {
	m := map[any]any{}
	m["self"] = m

	out := packUnpack(t, m).(map[any]any)
	self, ok := out["self"].(map[any]any)
	require.True(t, ok)
	self["probe"] = 1
	assert.Equal(t, 1, out["probe"], "self reference must resolve to the same map")
}

func TestCycleBetweenContainers(t *testing.T) {
	l := make([]any, 1)
	m := map[any]any{"list": l}
	l[0] = m

	out := packUnpack(t, l).([]any)
	outMap := out[0].(map[any]any)
	backList := outMap["list"].([]any)
	backList[0].(map[any]any)["probe"] = true
	assert.Equal(t, true, outMap["probe"])
}

func TestKeyTypesPreserved(t *testing.T) {
	m := map[any]any{
		"s":  1,
		7:    2,
		true: 3,
		2.5:  4,
	}

	out := packUnpack(t, m).(map[any]any)
	assert.Equal(t, 1, out["s"])
	assert.Equal(t, 2, out[7])
	assert.Equal(t, 3, out[true])
	assert.Equal(t, 4, out[2.5])
}

func TestNilKeyBoxed(t *testing.T) {
	m := map[any]any{nil: "nothing"}
	out := packUnpack(t, m).(map[any]any)
	assert.Equal(t, "nothing", out[nil])
}

func TestTokenLookingKeysSurvive(t *testing.T) {
	m := map[any]any{"<>1": "tricky"}
	out := packUnpack(t, m).(map[any]any)
	assert.Equal(t, "tricky", out["<>1"])
}

func TestRegisteredTypeRoundTrip(t *testing.T) {
	n := &node{name: "solo"}
	out := packUnpack(t, n).(*node)
	assert.Equal(t, "solo", out.name)
	assert.Nil(t, out.next)
}

func TestRegisteredTypeCycle(t *testing.T) {
	a := &node{name: "a"}
	b := &node{name: "b", next: a}
	a.next = b

	out := packUnpack(t, a).(*node)
	assert.Equal(t, "a", out.name)
	assert.Equal(t, "b", out.next.name)
	assert.Same(t, out, out.next.next, "two-node cycle must close on the same instances")
}

func TestRegisteredTypeSelfCycle(t *testing.T) {
	n := &node{name: "loop"}
	n.next = n

	out := packUnpack(t, n).(*node)
	assert.Same(t, out, out.next)
}

func TestUnsupportedType(t *testing.T) {
	_, err := Pack(struct{ X int }{1})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Pack([]any{make(chan int)})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUnpackMalformed(t *testing.T) {
	tests := []struct {
		name string
		env  *Envelope
	}{
		{name: "nil envelope", env: nil},
		{name: "missing table", env: &Envelope{Head: "x"}},
		{
			name: "unresolved reference",
			env:  &Envelope{Table: map[string]*Entry{}, Head: "<>1"},
		},
		{
			name: "nil entry",
			env:  &Envelope{Table: map[string]*Entry{"<>1": nil}, Head: "<>1"},
		},
		{
			name: "bad tuple payload",
			env: &Envelope{
				Table: map[string]*Entry{"<>1": {Type: "tuple", Data: "not-a-list"}},
				Head:  "<>1",
			},
		},
		{
			name: "bad registered payload",
			env: &Envelope{
				Table: map[string]*Entry{"<>1": {Type: "test.node", Data: []any{}}},
				Head:  "<>1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unpack(tt.env)
			assert.ErrorIs(t, err, ErrMalformedData)
		})
	}
}

func TestUnpackUnknownType(t *testing.T) {
	env := &Envelope{
		Table: map[string]*Entry{"<>1": {Type: "never.registered", Data: map[string]any{}}},
		Head:  "<>1",
	}
	_, err := Unpack(env)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestPackMeta(t *testing.T) {
	env, err := PackMeta("v", map[string]any{"source": "test"}, true)
	require.NoError(t, err)
	assert.Equal(t, "test", env.Meta["source"])
	assert.NotEmpty(t, env.Meta["timestamp"])

	out, meta, err := UnpackMeta(env)
	require.NoError(t, err)
	assert.Equal(t, "v", out)
	assert.Equal(t, "test", meta["source"])
}

func TestSessionsAreIndependent(t *testing.T) {
	shared := []any{"s"}

	env1, err := Pack(shared)
	require.NoError(t, err)
	env2, err := Pack(shared)
	require.NoError(t, err)

	// identical token layout: numbering restarts per call
	assert.Equal(t, env1.Head, env2.Head)
	assert.Equal(t, fmt.Sprint(env1.Table), fmt.Sprint(env2.Table))
}
