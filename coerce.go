package konfetti

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samarcan/konfetti/errors"
)

// Layouts accepted for time-valued variables.
const (
	TimeLayout = "2006-01-02T15:04:05"
	DateLayout = "2006-01-02"
)

// coerce converts a raw resolver string to the variable's declared kind.
// Failures are CoercionErrors carrying the raw value, so "malformed" is
// never mistaken for "missing".
func coerce(name string, kind Kind, raw string) (any, error) {
	value, err := coerceValue(kind, raw)
	if err != nil {
		return nil, &errors.CoercionError{Name: name, Kind: kind.String(), Raw: raw, Err: err}
	}
	return value, nil
}

func coerceValue(kind Kind, raw string) (any, error) {
	switch kind {
	case KindString:
		return raw, nil

	case KindInt:
		return strconv.Atoi(raw)

	case KindFloat:
		return strconv.ParseFloat(raw, 64)

	case KindBool:
		return coerceBool(raw)

	case KindDuration:
		return time.ParseDuration(raw)

	case KindTime:
		return time.Parse(TimeLayout, raw)

	case KindDate:
		return time.Parse(DateLayout, raw)

	case KindStringSlice:
		// Comma split, no trimming: whitespace around items is part of
		// the value.
		return strings.Split(raw, ","), nil

	case KindJSON:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, fmt.Errorf("not a JSON object: %w", err)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("unsupported kind %d", kind)
	}
}

// coerceBool maps the accepted spellings of a boolean. The empty string is
// false: an unset-looking value from a resolver that did answer still has
// a defined meaning.
func coerceBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized boolean %q", raw)
	}
}
