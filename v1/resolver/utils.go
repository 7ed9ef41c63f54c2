package resolver

import (
	"fmt"
	"reflect"
)

// DefaultMaxNameLength is the rune count after which descriptions are cut.
const DefaultMaxNameLength = 50

// TypeName returns the name of target's dynamic type with pointers removed,
// or "" for nil and unnamed types.
func TypeName(target any) string {
	if target == nil {
		return ""
	}
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// FieldString returns the named exported field of a struct (or pointer to
// struct) rendered as a string. Missing fields, nil pointers and zero values
// yield "".
func FieldString(target any, field string) string {
	v, ok := fieldValue(target, field)
	if !ok {
		return ""
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return ""
		}
	}
	if v.IsZero() {
		return ""
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v.Interface())
}

func fieldValue(target any, field string) (reflect.Value, bool) {
	if target == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	sf, ok := v.Type().FieldByName(field)
	if !ok || !sf.IsExported() {
		return reflect.Value{}, false
	}
	return v.FieldByIndex(sf.Index), true
}

// FirstString returns the first non-empty string argument.
func FirstString(args []any) string {
	for _, a := range args {
		if s, ok := a.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Truncate cuts s to max runes and appends "..." when it was longer.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
