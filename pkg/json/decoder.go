package json

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var config = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Decoder reads JSON values out of a byte stream into the document model.
// Decode returns the constructed value instead of filling in a pointer.
type Decoder struct {
	iter *jsoniter.Iterator
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{iter: jsoniter.Parse(config, r, 512)}
}

func (d *Decoder) error() error {
	if err := d.iter.Error; err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// More reports whether anything but whitespace is left in the stream. Bytes
// that do not start a value count, so that the next Decode reports them.
func (d *Decoder) More() bool {
	if d.iter.WhatIsNext() != jsoniter.InvalidValue {
		return true
	}
	return !errors.Is(d.iter.Error, io.EOF)
}

// Decode reads the next value. The returned value is floating; on error
// nothing is returned and any partially built tree has been released.
func (d *Decoder) Decode() (Value, error) {
	valueType := d.iter.WhatIsNext()
	if err := d.iter.Error; err != nil {
		return nil, err
	}

	switch valueType {
	case jsoniter.StringValue:
		v := d.iter.ReadString()
		if err := d.error(); err != nil {
			return nil, err
		}

		return NewString(v), nil

	case jsoniter.NumberValue:
		v := d.iter.ReadFloat64()
		if err := d.error(); err != nil {
			return nil, err
		}

		return NewNumber(v), nil

	case jsoniter.NilValue:
		d.iter.Skip()
		if err := d.error(); err != nil {
			return nil, err
		}

		return NewNull(), nil

	case jsoniter.BoolValue:
		v := d.iter.ReadBool()
		if err := d.error(); err != nil {
			return nil, err
		}

		return NewBool(v), nil

	case jsoniter.ArrayValue:
		var err error
		arr := NewArray()
		d.iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			v, e := d.Decode()
			if e != nil {
				err = e
				return false
			}

			arr.Append(v)
			disown(v)
			return true
		})
		if err == nil {
			err = d.error()
		}
		if err != nil {
			Unref(arr)
			return nil, err
		}

		return arr, nil

	case jsoniter.ObjectValue:
		var err error
		obj := NewObject()
		d.iter.ReadMapCB(func(iter *jsoniter.Iterator, field string) bool {
			v, e := d.Decode()
			if e != nil {
				err = e
				return false
			}

			obj.Set(field, v)
			disown(v)
			return true
		})
		if err == nil {
			err = d.error()
		}
		if err != nil {
			Unref(obj)
			return nil, err
		}

		return obj, nil
	}

	if valueType == jsoniter.InvalidValue {
		return nil, errors.New("json: invalid character where a value was expected")
	}
	return nil, fmt.Errorf("json: unexpected value type: %v", valueType)
}

// disown drops the constructor reference to a non-floating value after a
// container took its own.
func disown(v Value) {
	if v.hdr().pinned {
		Unref(v)
	}
}

// Unmarshal decodes a single JSON document.
func Unmarshal(data []byte) (Value, error) {
	iter := config.BorrowIterator(data)
	defer config.ReturnIterator(iter)

	d := &Decoder{iter: iter}
	v, err := d.Decode()
	if err != nil {
		return nil, err
	}

	if d.More() {
		Unref(v)
		return nil, errors.New("json: trailing data after document")
	}
	iter.Error = nil
	return v, nil
}
