package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind enumerates the closed set of value shapes a Value can hold.
type Kind int

const (
	// KindNull is the zero Value.
	KindNull Kind = iota
	// KindString holds UTF-8 text.
	KindString
	// KindNumber holds a float64 (JSON number semantics).
	KindNumber
	// KindBool holds a boolean.
	KindBool
	// KindList holds an ordered sequence of Values.
	KindList
	// KindMap holds a string-keyed mapping of Values.
	KindMap
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a schema-free JSON-like payload with a closed set of shapes
// (null, string, number, bool, list, map). It replaces untyped interface{}
// payloads in memory entries and result maps so stored data stays statically
// checkable while remaining as flexible as raw JSON.
//
// Values are immutable: constructors and accessors copy list and map
// contents, so a Value handed to a store cannot be mutated afterwards.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	obj  map[string]Value
}

// Null returns the null Value. The zero Value is also null.
func Null() Value { return Value{} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue wraps a float64.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// IntValue wraps an int as a number.
func IntValue(i int) Value { return Value{kind: KindNumber, num: float64(i)} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ListValue wraps an ordered sequence. The items are copied.
func ListValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: cp}
}

// MapValue wraps a string-keyed mapping. The entries are copied.
func MapValue(fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindMap, obj: cp}
}

// Kind reports the shape of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload; ok is false for non-string kinds.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload; ok is false for non-number kinds.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Bool returns the boolean payload; ok is false for non-bool kinds.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Items returns a copy of the list payload; ok is false for non-list kinds.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	cp := make([]Value, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// Fields returns a copy of the map payload; ok is false for non-map kinds.
func (v Value) Fields() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	cp := make(map[string]Value, len(v.obj))
	for k, f := range v.obj {
		cp[k] = f
	}
	return cp, true
}

// Field looks up a key on a map value. ok is false if the value is not a map
// or the key is absent.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Text renders a best-effort plain-text form of the value. Strings are
// returned verbatim; other kinds use their JSON encoding.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.str
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// Interface converts the value back into the natural Go representation
// (nil, string, float64, bool, []any, map[string]any).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.obj))
		for k, f := range v.obj {
			out[k] = f.Interface()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts a JSON-shaped Go value (as produced by encoding/json)
// into a Value. Integers and float32 are widened to float64. Unsupported
// types yield an error rather than a silent null.
func FromAny(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return NumberValue(f), nil
	case []any:
		items := make([]Value, len(t))
		for i, raw := range t {
			v, err := FromAny(raw)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, raw := range t {
			v, err := FromAny(raw)
			if err != nil {
				return Value{}, err
			}
			fields[k] = v
		}
		return Value{kind: KindMap, obj: fields}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", in)
	}
}

// Equal reports deep equality of two values.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.b == b.b
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalJSON encodes the value using natural JSON shapes. Map keys are
// emitted in sorted order so encodings are deterministic.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		buf := []byte{'['}
		for i, item := range v.list {
			if i > 0 {
				buf = append(buf, ',')
			}
			enc, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, enc...)
		}
		return append(buf, ']'), nil
	case KindMap:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kenc, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			venc, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf = append(buf, kenc...)
			buf = append(buf, ':')
			buf = append(buf, venc...)
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// UnmarshalJSON decodes any JSON document into the matching value shape.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
