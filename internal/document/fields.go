package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Field is one key/value pair of a JSON object, both kept as raw JSON.
type Field struct {
	Name   string
	rawKey string
	Value  string
}

// ObjectFields returns the members of obj in document order.
func ObjectFields(obj gjson.Result) ([]Field, error) {
	if !obj.IsObject() {
		return nil, errors.New("expected a JSON object")
	}
	var fields []Field
	obj.ForEach(func(key, value gjson.Result) bool {
		fields = append(fields, Field{Name: key.String(), rawKey: key.Raw, Value: value.Raw})
		return true
	})
	return fields, nil
}

// NewTeam builds a {"name": ..., "drivers": ...} record from raw JSON values.
func NewTeam(name, drivers gjson.Result) ([]byte, error) {
	if !name.Exists() {
		return nil, fmt.Errorf("team %q missing", keyName)
	}
	if !drivers.Exists() {
		return nil, fmt.Errorf("team %q missing", keyDrivers)
	}
	out, err := sjson.SetRawBytes([]byte(`{}`), keyName, []byte(name.Raw))
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(out, keyDrivers, []byte(drivers.Raw))
}

var prettyOptions = &pretty.Options{Width: -1, Indent: "    "}

// Pretty renders raw JSON with 4-space indentation and a trailing newline.
func Pretty(raw []byte) []byte {
	return pretty.PrettyOptions(raw, prettyOptions)
}

func mergeObject(obj gjson.Result, fields []Field) []byte {
	merged, _ := ObjectFields(obj)
	for _, f := range fields {
		replaced := false
		for i := range merged {
			if merged[i].Name == f.Name {
				merged[i].Value = f.Value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, f)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range merged {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(f.rawKey)
		buf.WriteByte(':')
		buf.WriteString(f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}
