package pack

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ id int }

var widgetHandlers = Handlers{
	Pack: func(p *Packer, obj any) (map[string]any, error) {
		return map[string]any{"id": obj.(*widget).id}, nil
	},
	Create: func(fields map[string]any) (any, error) {
		return &widget{}, nil
	},
	Unpack: func(u *Unpacker, obj any, fields map[string]any) error {
		id, err := intField(fields, "id")
		if err != nil {
			return err
		}
		obj.(*widget).id = id
		return nil
	},
}

func TestRegisterDefaultName(t *testing.T) {
	require.NoError(t, Register((*widget)(nil), widgetHandlers))

	name, err := NameOf(&widget{})
	require.NoError(t, err)
	assert.Equal(t, "github.com/mesh-intelligence/knapsack/pkg/pack.widget", name)

	rt, err := ResolveName(name)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf((*widget)(nil)), rt)
}

func TestDuplicateRegistration(t *testing.T) {
	type once struct{}
	require.NoError(t, RegisterNamed("test.once", (*once)(nil), widgetHandlers))

	err := RegisterNamed("test.once", (*once)(nil), widgetHandlers)
	assert.ErrorIs(t, err, ErrDuplicateRegistration, "re-registration is rejected even for the same type")
}

func TestRegisterValidation(t *testing.T) {
	type empty struct{}

	assert.ErrorIs(t, RegisterNamed("", (*empty)(nil), widgetHandlers), ErrDuplicateRegistration)
	assert.ErrorIs(t, RegisterNamed("test.nilproto", nil, widgetHandlers), ErrUnsupportedType)
	assert.ErrorIs(t, RegisterNamed("test.partial", (*empty)(nil), Handlers{Pack: widgetHandlers.Pack}), ErrUnsupportedType)
}

func TestResolveNameBuiltins(t *testing.T) {
	tests := []struct {
		name string
		want reflect.Type
	}{
		{name: "str", want: reflect.TypeOf("")},
		{name: "int", want: reflect.TypeOf(int64(0))},
		{name: "float", want: reflect.TypeOf(float64(0))},
		{name: "bool", want: reflect.TypeOf(false)},
		{name: "tuple", want: reflect.TypeOf(Tuple(nil))},
		{name: "list", want: reflect.TypeOf([]any(nil))},
		{name: "dict", want: reflect.TypeOf(map[any]any(nil))},
		{name: "set", want: reflect.TypeOf(Set(nil))},
		{name: "bytes", want: reflect.TypeOf([]byte(nil))},
		{name: "range", want: reflect.TypeOf(Range{})},
		{name: "complex", want: reflect.TypeOf(complex128(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := ResolveName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt)
		})
	}

	_, err := ResolveName("os/exec.Cmd")
	assert.ErrorIs(t, err, ErrUnknownType, "unknown names never resolve to live types")
}

func TestNameOfUnknown(t *testing.T) {
	_, err := NameOf(struct{ private int }{})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegisteredTypePackUsesName(t *testing.T) {
	require.NoError(t, RegisterNamed("test.widget2", (*widget2)(nil), Handlers{
		Pack: func(p *Packer, obj any) (map[string]any, error) {
			return map[string]any{}, nil
		},
		Create: func(fields map[string]any) (any, error) {
			return &widget2{}, nil
		},
		Unpack: func(u *Unpacker, obj any, fields map[string]any) error {
			return nil
		},
	}))

	env, err := Pack(&widget2{})
	require.NoError(t, err)
	require.Len(t, env.Table, 1)
	for _, ent := range env.Table {
		assert.Equal(t, "test.widget2", ent.Type)
	}
}

type widget2 struct{}
