package konfetti

import (
	"fmt"
	"time"
)

// Kind enumerates the value types a variable can be declared with.
type Kind int

// Supported variable kinds.
const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindDuration
	KindTime
	KindDate
	KindStringSlice
	KindJSON
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	case KindTime:
		return "time"
	case KindDate:
		return "date"
	case KindStringSlice:
		return "string slice"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Variable describes one configuration value: its name, declared kind,
// optional default and whether eager validation treats its absence as a
// failure. Immutable after construction.
type Variable struct {
	name       string
	kind       Kind
	def        any
	hasDefault bool
	required   bool
}

// VarOption is a functional option for declaring a Variable.
type VarOption func(*Variable) error

// WithDefault sets the fallback value used when no resolver provides one.
// The value is pre-typed: it must already match the declared kind and is
// never run through coercion.
func WithDefault(value any) VarOption {
	return func(v *Variable) error {
		if err := checkDefaultKind(v.kind, value); err != nil {
			return err
		}
		v.def = value
		v.hasDefault = true
		return nil
	}
}

// Required marks the variable as mandatory for eager validation.
func Required() VarOption {
	return func(v *Variable) error {
		v.required = true
		return nil
	}
}

// NewVariable declares a variable of the given kind.
func NewVariable(name string, kind Kind, opts ...VarOption) (Variable, error) {
	if name == "" {
		return Variable{}, fmt.Errorf("variable name cannot be empty")
	}
	v := Variable{name: name, kind: kind}
	for _, opt := range opts {
		if err := opt(&v); err != nil {
			return Variable{}, fmt.Errorf("variable `%s`: %w", name, err)
		}
	}
	return v, nil
}

// MustVariable is NewVariable that panics on error, for declarations
// built from literals.
func MustVariable(name string, kind Kind, opts ...VarOption) Variable {
	v, err := NewVariable(name, kind, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the variable's name.
func (v Variable) Name() string { return v.name }

// Kind returns the declared kind.
func (v Variable) Kind() Kind { return v.kind }

// IsRequired reports whether eager validation treats absence as a failure.
func (v Variable) IsRequired() bool { return v.required }

// Default returns the declared default, if any.
func (v Variable) Default() (any, bool) {
	return v.def, v.hasDefault
}

// checkDefaultKind verifies a default value's dynamic type matches the
// declared kind. Catching the mismatch at declaration keeps every value
// handed out for a kind the same Go type, resolved or defaulted.
func checkDefaultKind(kind Kind, value any) error {
	ok := false
	switch kind {
	case KindString:
		_, ok = value.(string)
	case KindInt:
		_, ok = value.(int)
	case KindFloat:
		_, ok = value.(float64)
	case KindBool:
		_, ok = value.(bool)
	case KindDuration:
		_, ok = value.(time.Duration)
	case KindTime, KindDate:
		_, ok = value.(time.Time)
	case KindStringSlice:
		_, ok = value.([]string)
	case KindJSON:
		_, ok = value.(map[string]any)
	}
	if !ok {
		return fmt.Errorf("default %v (%T) does not match declared kind %s", value, value, kind)
	}
	return nil
}
