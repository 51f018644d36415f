package json

import (
	gojson "encoding/json"
	"fmt"
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/open-policy-agent/opa/ast"
)

// FromNative converts a Go value into the document model. Maps, slices and
// scalars produced by encoding/json style decoding are converted directly;
// anything else is round-tripped through the encoder. The returned value is
// floating.
func FromNative(x interface{}) (Value, error) {
	switch x := x.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(x), nil
	case float64:
		return NewNumber(x), nil
	case float32:
		return NewNumber(float64(x)), nil
	case int:
		return NewNumber(float64(x)), nil
	case int64:
		return NewNumber(float64(x)), nil
	case gojson.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return NewNumber(f), nil
	case jsoniter.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return NewNumber(f), nil
	case string:
		return NewString(x), nil
	case []interface{}:
		arr := NewArray()
		for _, e := range x {
			v, err := FromNative(e)
			if err != nil {
				Unref(arr)
				return nil, err
			}
			arr.Append(v)
			disown(v)
		}
		return arr, nil
	case map[string]interface{}:
		obj := NewObject()
		for k, e := range x {
			v, err := FromNative(e)
			if err != nil {
				Unref(obj)
				return nil, err
			}
			obj.Set(k, v)
			disown(v)
		}
		return obj, nil
	case Value:
		return Clone(x), nil
	}

	data, err := config.Marshal(x)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// ToNative converts v into the Go types encoding/json decodes into: nil, bool,
// float64, string, []interface{} and map[string]interface{}.
func ToNative(v Value) interface{} {
	live(v)
	switch v := v.(type) {
	case *Null:
		return nil
	case *Boolean:
		return v.value
	case *Number:
		return v.value
	case *String:
		return v.Value()
	case *Array:
		out := make([]interface{}, len(v.elems))
		for i, e := range v.elems {
			out[i] = ToNative(e)
		}
		return out
	case *Object:
		out := make(map[string]interface{}, v.n)
		v.Iter(func(key string, e Value) bool {
			out[key] = ToNative(e)
			return true
		})
		return out
	}
	panic("json: unsupported type")
}

// Marshal encodes v as compact JSON with sorted object keys.
func Marshal(v Value) ([]byte, error) {
	if err := checkFinite(v); err != nil {
		return nil, err
	}
	return config.Marshal(ToNative(v))
}

func checkFinite(v Value) error {
	switch v := v.(type) {
	case *Number:
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("json: unsupported number %v", v.value)
		}
	case *Array:
		for _, e := range v.elems {
			if err := checkFinite(e); err != nil {
				return err
			}
		}
	case *Object:
		var err error
		v.Iter(func(_ string, e Value) bool {
			err = checkFinite(e)
			return err == nil
		})
		return err
	}
	return nil
}

// AST converts v into a Rego value.
func AST(v Value) ast.Value {
	live(v)
	switch v := v.(type) {
	case *Null:
		return ast.Null{}
	case *Boolean:
		return ast.Boolean(v.value)
	case *Number:
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return ast.Null{}
		}
		return ast.FloatNumberTerm(v.value).Value
	case *String:
		return ast.String(v.Value())
	case *Array:
		array := make([]*ast.Term, len(v.elems))
		for i, e := range v.elems {
			array[i] = ast.NewTerm(AST(e))
		}
		return ast.NewArray(array...)
	case *Object:
		object := make([][2]*ast.Term, 0, v.n)
		v.Iter(func(key string, e Value) bool {
			object = append(object, [2]*ast.Term{ast.StringTerm(key), ast.NewTerm(AST(e))})
			return true
		})
		return ast.NewObject(object...)
	}
	panic("json: unsupported type")
}
