package ir

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags a FeatureValue.
type ValueKind int

const (
	// ValueNumber is a literal numeric argument.
	ValueNumber ValueKind = iota
	// ValueString is an opaque string literal (e.g. operation = "cut").
	ValueString
	// ValueRef is a reference to a Param by name. The compiler promotes a
	// bare identifier to ValueRef iff a param of that name exists in the
	// part; on the wire a ref is indistinguishable from a string, so
	// unmarshaling yields ValueString and resolution re-checks by lookup.
	ValueRef
)

// FeatureValue is a feature argument: a number literal, a string literal, or
// a param reference. The wire shape is frozen as "number or string", matching
// the historical consumers, so the Ref/String distinction is carried only
// in-process.
type FeatureValue struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// NumberValue constructs a numeric literal.
func NumberValue(f float64) FeatureValue {
	return FeatureValue{Kind: ValueNumber, Num: f}
}

// StringValue constructs a string literal.
func StringValue(s string) FeatureValue {
	return FeatureValue{Kind: ValueString, Str: s}
}

// RefValue constructs a param reference.
func RefValue(name string) FeatureValue {
	return FeatureValue{Kind: ValueRef, Str: name}
}

// MarshalJSON emits a JSON number for ValueNumber and a JSON string
// otherwise, preserving the frozen wire shape.
func (v FeatureValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return []byte(strconv.FormatFloat(v.Num, 'g', -1, 64)), nil
	case ValueString, ValueRef:
		return json.Marshal(v.Str)
	default:
		return nil, fmt.Errorf("unknown feature value kind: %d", v.Kind)
	}
}

// UnmarshalJSON accepts a JSON number or string.
func (v *FeatureValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = StringValue(str)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("feature value must be a number or string: %s", s)
	}
	*v = NumberValue(f)
	return nil
}

// String renders the value for messages and DSL generation.
func (v FeatureValue) String() string {
	if v.Kind == ValueNumber {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}
