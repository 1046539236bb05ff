package pack

import "errors"

// Engine errors (prd001-pack-core R8). All are programmer or data errors;
// the engine never retries and always tears down session state before an
// error propagates.
var (
	// ErrDuplicateRegistration reports a Register call with a name that is
	// already in use, including re-registration of the same type.
	ErrDuplicateRegistration = errors.New("type name already registered")

	// ErrUnknownType reports a type-reference token or declared entry type
	// with no registered handler and no built-in fallback.
	ErrUnknownType = errors.New("unknown type name")

	// ErrUnsupportedType reports a packed value whose type has no
	// registered handler and is not a supported built-in.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrMalformedData reports an envelope missing required fields or a
	// token that resolves to no table entry.
	ErrMalformedData = errors.New("malformed envelope data")
)
