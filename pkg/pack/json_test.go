package pack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTripNormalizesNumbers(t *testing.T) {
	in := map[any]any{
		"count":  int64(7),
		"ratio":  0.5,
		"big":    int64(1) << 53,
		"whole":  int64(2),
		"keyed":  map[any]any{int64(3): "three"},
		"listed": []any{int64(1), 2.5},
	}

	text, err := PackToJSON(in)
	require.NoError(t, err)
	out, err := UnpackFromJSON(text)
	require.NoError(t, err)

	m := out.(map[any]any)
	assert.Equal(t, int64(7), m["count"])
	assert.Equal(t, 0.5, m["ratio"])
	assert.Equal(t, int64(1)<<53, m["big"])
	assert.Equal(t, int64(2), m["whole"])
	assert.Equal(t, "three", m["keyed"].(map[any]any)[int64(3)])
	assert.Equal(t, []any{int64(1), 2.5}, m["listed"])
}

func TestJSONPreservesCycles(t *testing.T) {
	l := make([]any, 1)
	l[0] = l

	text, err := PackToJSON(l)
	require.NoError(t, err)

	out, err := UnpackFromJSON(text)
	require.NoError(t, err)
	s := out.([]any)
	inner := s[0].([]any)
	inner[0] = "probe"
	assert.Equal(t, "probe", s[0])
}

func TestJSONBytesAndComplex(t *testing.T) {
	in := []any{[]byte{0, 10, 200, 255}, complex(1, -1)}

	text, err := PackToJSON(in)
	require.NoError(t, err)
	out, err := UnpackFromJSON(text)
	require.NoError(t, err)

	s := out.([]any)
	assert.Equal(t, []byte{0, 10, 200, 255}, s[0])
	assert.Equal(t, complex(1, -1), s[1])
}

func TestFromJSONMalformed(t *testing.T) {
	_, err := FromJSON("{not json")
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	env, err := Pack(map[any]any{"k": int64(1)})
	require.NoError(t, err)
	require.NoError(t, Save(path, env))

	loaded, err := Load(path)
	require.NoError(t, err)
	out, err := Unpack(loaded)
	require.NoError(t, err)
	assert.Equal(t, map[any]any{"k": int64(1)}, out)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDeepCopy(t *testing.T) {
	shared := []any{"s"}
	original := []any{shared, shared, map[any]any{"k": shared}}

	copied, err := DeepCopy(original)
	require.NoError(t, err)

	c := copied.([]any)
	// the copy preserves internal aliasing
	c[0].([]any)[0] = "probe"
	assert.Equal(t, "probe", c[1].([]any)[0])
	assert.Equal(t, "probe", c[2].(map[any]any)["k"].([]any)[0])

	// but is independent of the original
	assert.Equal(t, "s", shared[0])
}
