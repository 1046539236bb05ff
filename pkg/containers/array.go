package containers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/mesh-intelligence/knapsack/pkg/ident"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

// Array errors.
var (
	ErrShapeMismatch = errors.New("element count does not match shape")
	ErrBadIndex      = errors.New("index out of range for shape")
)

// NDArray is a transactional dense numeric array. Elements are float64 and
// stored flat in row-major order; shape describes the logical dimensions.
// Serialized with its raw element bytes so large arrays do not pay per-cell
// reference-table overhead.
// Implements: prd003-containers R9.
type NDArray struct {
	ident.Tag
	shape []int
	data  []float64

	shadowShape []int
	shadowData  []float64
	inTx        bool
}

// NewArray returns a zero-filled array with the given shape.
func NewArray(shape ...int) *NDArray {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	return &NDArray{
		Tag:   ident.New(),
		shape: append(make([]int, 0, len(shape)), shape...),
		data:  make([]float64, n),
	}
}

// ArrayOf returns an array over data with the given shape. The element
// count must match the shape's volume.
func ArrayOf(data []float64, shape ...int) (*NDArray, error) {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d elements, shape %v", ErrShapeMismatch, len(data), shape)
	}
	return &NDArray{
		Tag:   ident.New(),
		shape: append(make([]int, 0, len(shape)), shape...),
		data:  append(make([]float64, 0, len(data)), data...),
	}, nil
}

// Shape returns a copy of the dimensions.
func (a *NDArray) Shape() []int {
	return append(make([]int, 0, len(a.shape)), a.shape...)
}

// Len returns the total element count.
func (a *NDArray) Len() int {
	return len(a.data)
}

func (a *NDArray) offset(index []int) (int, error) {
	if len(index) != len(a.shape) {
		return 0, fmt.Errorf("%w: %v against %v", ErrBadIndex, index, a.shape)
	}
	off := 0
	for i, ix := range index {
		if ix < 0 || ix >= a.shape[i] {
			return 0, fmt.Errorf("%w: %v against %v", ErrBadIndex, index, a.shape)
		}
		off = off*a.shape[i] + ix
	}
	return off, nil
}

// At returns the element at index.
func (a *NDArray) At(index ...int) (float64, error) {
	off, err := a.offset(index)
	if err != nil {
		return 0, err
	}
	return a.data[off], nil
}

// SetAt stores value at index.
func (a *NDArray) SetAt(value float64, index ...int) error {
	off, err := a.offset(index)
	if err != nil {
		return err
	}
	a.data[off] = value
	return nil
}

// Flat returns the backing slice. Mutations write through.
func (a *NDArray) Flat() []float64 {
	return a.data
}

// Reshape changes the logical dimensions, keeping the flat data.
func (a *NDArray) Reshape(shape ...int) error {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	if n != len(a.data) {
		return fmt.Errorf("%w: %d elements, shape %v", ErrShapeMismatch, len(a.data), shape)
	}
	a.shape = append(make([]int, 0, len(shape)), shape...)
	return nil
}

// Copy returns a deep copy.
func (a *NDArray) Copy() *NDArray {
	c := &NDArray{
		Tag:   ident.New(),
		shape: append(make([]int, 0, len(a.shape)), a.shape...),
		data:  append(make([]float64, 0, len(a.data)), a.data...),
		inTx:  a.inTx,
	}
	if a.inTx {
		c.shadowShape = append(make([]int, 0, len(a.shadowShape)), a.shadowShape...)
		c.shadowData = append(make([]float64, 0, len(a.shadowData)), a.shadowData...)
	}
	return c
}

// InTransaction reports whether a transaction is open.
func (a *NDArray) InTransaction() bool {
	return a.inTx
}

// Begin opens a transaction; no-op when one is already open.
func (a *NDArray) Begin() {
	if a.inTx {
		return
	}
	a.shadowShape = a.shape
	a.shadowData = a.data
	a.shape = append(make([]int, 0, len(a.shape)), a.shape...)
	a.data = append(make([]float64, 0, len(a.data)), a.data...)
	a.inTx = true
}

// Commit closes the transaction, keeping the live state.
func (a *NDArray) Commit() {
	if !a.inTx {
		return
	}
	a.shadowShape = nil
	a.shadowData = nil
	a.inTx = false
}

// Abort closes the transaction, restoring the snapshot.
func (a *NDArray) Abort() {
	if !a.inTx {
		return
	}
	a.shape = a.shadowShape
	a.data = a.shadowData
	a.shadowShape = nil
	a.shadowData = nil
	a.inTx = false
}

func floatsToBytes(data []float64) []byte {
	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func bytesToFloats(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("%w: %d payload bytes", pack.ErrMalformedData, len(buf))
	}
	data := make([]float64, len(buf)/8)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return data, nil
}

func packShape(p *pack.Packer, shape []int) (any, error) {
	dims := make(pack.Tuple, len(shape))
	for i, dim := range shape {
		dims[i] = dim
	}
	return p.PackMember(dims)
}

func unpackShape(u *pack.Unpacker, packed any) ([]int, error) {
	raw, err := u.UnpackMember(packed)
	if err != nil {
		return nil, err
	}
	dims, ok := raw.(pack.Tuple)
	if !ok {
		return nil, fmt.Errorf("%w: array shape is %T", pack.ErrMalformedData, raw)
	}
	shape := make([]int, len(dims))
	for i, dim := range dims {
		n, err := toArrayDim(dim)
		if err != nil {
			return nil, err
		}
		shape[i] = n
	}
	return shape, nil
}

func toArrayDim(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("%w: array dimension is %T", pack.ErrMalformedData, v)
}

func init() {
	pack.MustRegister((*NDArray)(nil), pack.Handlers{
		Pack: func(p *pack.Packer, obj any) (map[string]any, error) {
			a := obj.(*NDArray)
			fields := map[string]any{"_dtype": "float64"}
			var err error
			if fields["_shape"], err = packShape(p, a.shape); err != nil {
				return nil, err
			}
			if fields["_bytes"], err = p.PackMember(floatsToBytes(a.data)); err != nil {
				return nil, err
			}
			if a.inTx {
				if fields["_shadow_shape"], err = packShape(p, a.shadowShape); err != nil {
					return nil, err
				}
				if fields["_shadow_bytes"], err = p.PackMember(floatsToBytes(a.shadowData)); err != nil {
					return nil, err
				}
			}
			return fields, nil
		},
		Create: func(fields map[string]any) (any, error) {
			return NewArray(), nil
		},
		Unpack: func(u *pack.Unpacker, obj any, fields map[string]any) error {
			a := obj.(*NDArray)
			shape, err := unpackShape(u, fields["_shape"])
			if err != nil {
				return err
			}
			raw, err := u.UnpackMember(fields["_bytes"])
			if err != nil {
				return err
			}
			buf, ok := raw.([]byte)
			if !ok {
				return fmt.Errorf("%w: array payload is %T", pack.ErrMalformedData, raw)
			}
			data, err := bytesToFloats(buf)
			if err != nil {
				return err
			}
			a.shape, a.data = shape, data

			if packed, ok := fields["_shadow_shape"]; ok {
				if a.shadowShape, err = unpackShape(u, packed); err != nil {
					return err
				}
				raw, err := u.UnpackMember(fields["_shadow_bytes"])
				if err != nil {
					return err
				}
				buf, ok := raw.([]byte)
				if !ok {
					return fmt.Errorf("%w: array shadow payload is %T", pack.ErrMalformedData, raw)
				}
				if a.shadowData, err = bytesToFloats(buf); err != nil {
					return err
				}
				a.inTx = true
			}
			return nil
		},
	})
}
