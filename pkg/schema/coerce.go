package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Coerce converts value to the target type. Integers come back as int64,
// numbers as float64, arrays as []any and objects as map[string]any.
//
// A nil value stays nil for every type. TypeAny and TypeNull pass the value
// through unmodified. Any other failure is returned as a *CoercionError.
func Coerce(value any, t Type) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch t {
	case TypeAny, TypeNull:
		return value, nil
	case TypeString:
		return toString(value), nil
	case TypeInteger:
		return toInteger(value)
	case TypeNumber:
		return toNumber(value)
	case TypeBoolean:
		return toBoolean(value)
	case TypeArray:
		return toArray(value), nil
	case TypeObject:
		m, err := toObject(value)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, &CoercionError{Type: t, Value: value, Reason: "unknown type"}
	}
}

// numberLike matches json.Number from both encoding/json and go-json.
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case Date:
		return v.String()
	case numberLike:
		return v.String()
	}
	switch reflect.Indirect(reflect.ValueOf(value)).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(value); err == nil {
			return string(b)
		}
		return fmt.Sprint(value)
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return s
}

func toInteger(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		return parseInteger(value, v)
	case numberLike:
		return parseInteger(value, v.String())
	case float64:
		return truncate(value, v)
	case float32:
		return truncate(value, float64(v))
	case uint:
		return fromUnsigned(value, uint64(v))
	case uint64:
		return fromUnsigned(value, v)
	case uintptr:
		return fromUnsigned(value, uint64(v))
	}
	i, err := cast.ToInt64E(value)
	if err != nil {
		return nil, &CoercionError{Type: TypeInteger, Value: value, Reason: err.Error()}
	}
	return i, nil
}

func fromUnsigned(orig any, u uint64) (any, error) {
	if u > math.MaxInt64 {
		return nil, &CoercionError{Type: TypeInteger, Value: orig, Reason: "out of int64 range"}
	}
	return int64(u), nil
}

func parseInteger(orig any, s string) (any, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &CoercionError{Type: TypeInteger, Value: orig, Reason: fmt.Sprintf("%q is not numeric", s)}
	}
	return truncate(orig, f)
}

func truncate(orig any, f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &CoercionError{Type: TypeInteger, Value: orig, Reason: "not a finite number"}
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return nil, &CoercionError{Type: TypeInteger, Value: orig, Reason: "out of int64 range"}
	}
	return int64(t), nil
}

func toNumber(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return float64(1), nil
		}
		return float64(0), nil
	case string:
		return parseNumber(value, v)
	case numberLike:
		return parseNumber(value, v.String())
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, &CoercionError{Type: TypeNumber, Value: value, Reason: err.Error()}
	}
	return f, nil
}

func parseNumber(orig any, s string) (any, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &CoercionError{Type: TypeNumber, Value: orig, Reason: fmt.Sprintf("%q is not numeric", s)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &CoercionError{Type: TypeNumber, Value: orig, Reason: "not a finite number"}
	}
	return f, nil
}

func toBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		switch {
		case strings.EqualFold(s, "true"):
			return true, nil
		case strings.EqualFold(s, "false"):
			return false, nil
		}
		return nil, &CoercionError{Type: TypeBoolean, Value: value, Reason: fmt.Sprintf("%q is not true or false", v)}
	case numberLike:
		f, err := v.Float64()
		if err != nil {
			return nil, &CoercionError{Type: TypeBoolean, Value: value, Reason: err.Error()}
		}
		return f != 0, nil
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, &CoercionError{Type: TypeBoolean, Value: value, Reason: err.Error()}
	}
	return f != 0, nil
}

// toArray never fails: a scalar becomes a one-element sequence.
func toArray(value any) []any {
	switch v := value.(type) {
	case []any:
		return v
	case string, []byte:
		return []any{v}
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func toObject(value any) (map[string]any, error) {
	if m, ok := value.(map[string]any); ok {
		return m, nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	case reflect.Indirect(rv).Kind() == reflect.Struct:
		var out map[string]any
		if err := mapstructure.Decode(value, &out); err != nil {
			return nil, &CoercionError{Type: TypeObject, Value: value, Reason: err.Error()}
		}
		return out, nil
	}
	return nil, &CoercionError{Type: TypeObject, Value: value, Reason: "not a mapping"}
}
