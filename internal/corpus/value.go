package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type Kind uint8

const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// Value is one parameter value. The zero Value is invalid and fails to marshal.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	m    map[string]Value
	l    []Value
}

type Params map[string]Value

func String(s string) Value { return Value{kind: KindString, str: s} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

func List(l []Value) Value { return Value{kind: KindList, l: l} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

func (v Value) AsList() ([]Value, bool) { return v.l, v.kind == KindList }

// Clone deep-copies nested maps and lists.
func (v Value) Clone() Value {
	switch v.kind {
	case KindMap:
		return Map(Params(v.m).Clone())
	case KindList:
		l := make([]Value, len(v.l))
		for i, item := range v.l {
			l[i] = item.Clone()
		}
		return List(l)
	default:
		return v
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindMap:
		return Params(v.m).Equal(o.m)
	case KindList:
		if len(v.l) != len(o.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(o.l[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindMap:
		return json.Marshal(v.m)
	case KindList:
		return json.Marshal(v.l)
	default:
		return nil, fmt.Errorf("marshal invalid parameter value")
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	parsed, err := fromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromAny(raw any) (Value, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("parameter number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case bool:
		return Bool(t), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, item := range t {
			parsed, err := fromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = parsed
		}
		return Map(m), nil
	case []any:
		l := make([]Value, len(t))
		for i, item := range t {
			parsed, err := fromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			l[i] = parsed
		}
		return List(l), nil
	case nil:
		return Value{}, fmt.Errorf("null parameter values are not supported")
	default:
		return Value{}, fmt.Errorf("unsupported parameter type %T", raw)
	}
}

func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v.Clone()
	}
	return out
}

func (p Params) Equal(o Params) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Text returns the string parameter under key, if present and a string.
func (p Params) Text(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

