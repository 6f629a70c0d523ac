package upstream

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed reports a body that is not JSON at all. Bodies that are JSON
// but have an unexpected shape decode to zero values instead.
var ErrMalformed = errors.New("malformed upstream body")

var decodeOptions = json.JoinOptions(
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
)

// Decode unmarshals body into v with the lenient options used for upstream data.
func Decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v, decodeOptions); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Scalar accepts any JSON scalar and keeps its text. Strings are unquoted,
// numbers keep their literal form, null and composite values become "".
type Scalar string

// UnmarshalJSONFrom implements json.UnmarshalerFrom.
func (s *Scalar) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	val, err := dec.ReadValue()
	if err != nil {
		return err
	}
	switch val.Kind() {
	case '"':
		var str string
		if json.Unmarshal(val, &str, decodeOptions) != nil {
			str = ""
		}
		*s = Scalar(str)
	case '0':
		*s = Scalar(string(val))
	case 't':
		*s = "true"
	case 'f':
		*s = "false"
	default:
		*s = ""
	}
	return nil
}

// String returns the trimmed text.
func (s Scalar) String() string {
	return strings.TrimSpace(string(s))
}

// Int parses the leading integer of the value, the way a browser's parseInt
// would. Fractions are truncated; anything unparsable is 0.
func (s Scalar) Int() int {
	str := s.String()
	if str == "" {
		return 0
	}
	if n, err := strconv.Atoi(str); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(str, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}

	end := 0
	if end < len(str) && (str[end] == '-' || str[end] == '+') {
		end++
	}
	for end < len(str) && str[end] >= '0' && str[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(str[:end])
	if err != nil {
		return 0
	}
	return n
}

// Float parses the value as a float, 0 when it is not numeric.
func (s Scalar) Float() float64 {
	f, err := strconv.ParseFloat(s.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Truthy mirrors loose truthiness: empty, "0", "false" and numeric zero are false.
func (s Scalar) Truthy() bool {
	str := s.String()
	switch str {
	case "", "false":
		return false
	}
	if f, err := strconv.ParseFloat(str, 64); err == nil {
		return f != 0
	}
	return true
}

// List decodes a JSON array of T. A value that is not an array decodes as an
// empty list, and elements that do not fit T are skipped.
type List[T any] []T

// UnmarshalJSONFrom implements json.UnmarshalerFrom.
func (l *List[T]) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	val, err := dec.ReadValue()
	if err != nil {
		return err
	}
	*l = nil
	if val.Kind() != '[' {
		return nil
	}

	var elems []jsontext.Value
	if json.Unmarshal(val, &elems, decodeOptions) != nil {
		return nil
	}
	out := make([]T, 0, len(elems))
	for _, elem := range elems {
		var v T
		if json.Unmarshal(elem, &v, decodeOptions) == nil {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

// Optional decodes a T when the value fits and records whether it did.
// null, a missing member, or a value of the wrong shape leave Set false.
type Optional[T any] struct {
	Value T
	Set   bool
}

// UnmarshalJSONFrom implements json.UnmarshalerFrom.
func (o *Optional[T]) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	val, err := dec.ReadValue()
	if err != nil {
		return err
	}
	*o = Optional[T]{}
	if val.Kind() == 'n' {
		return nil
	}
	var v T
	if json.Unmarshal(val, &v, decodeOptions) != nil {
		return nil
	}
	*o = Optional[T]{Value: v, Set: true}
	return nil
}

// Get returns the value when set, otherwise nil.
func (o Optional[T]) Get() *T {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
