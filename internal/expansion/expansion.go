// Package expansion applies a string expansion function to every settable string
// reachable from a value. It is used to substitute ${...} placeholders in decoded
// configuration sections.
package expansion

import (
	"reflect"

	"github.com/pkg/errors"
)

// Func expands a single string.
type Func func(string) (string, error)

// Walk recursively traverses target and replaces every settable string with the
// result of fn. Nested structs, pointers, slices, arrays and maps are followed.
// target must be a pointer for the changes to be visible to the caller.
// Walking stops at the first error.
func Walk(target any, fn Func) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return walk(v.Elem(), fn)
	}
	return walk(v, fn)
}

func walk(val reflect.Value, fn Func) error {
	switch val.Kind() {
	case reflect.String:
		if !val.CanSet() {
			return nil
		}
		expanded, err := fn(val.String())
		if err != nil {
			return errors.Wrap(err, "error expanding value")
		}
		val.SetString(expanded)

	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if err := walk(val.Field(i), fn); err != nil {
				return errors.Wrapf(err, "field %s", val.Type().Field(i).Name)
			}
		}

	case reflect.Ptr, reflect.Interface:
		if !val.IsNil() {
			return walkIndirect(val, fn)
		}

	case reflect.Slice, reflect.Array:
		for j := 0; j < val.Len(); j++ {
			if err := walk(val.Index(j), fn); err != nil {
				return err
			}
		}

	case reflect.Map:
		if val.IsNil() {
			return nil
		}
		for _, key := range val.MapKeys() {
			// map values are not addressable
			mapVal := val.MapIndex(key)
			newVal := reflect.New(mapVal.Type()).Elem()
			newVal.Set(mapVal)
			if err := walk(newVal, fn); err != nil {
				return errors.Wrapf(err, "key %v", key.Interface())
			}
			val.SetMapIndex(key, newVal)
		}

	default:
	}

	return nil
}

// walkIndirect follows pointers directly. Interfaces hold unaddressable values, so
// the dynamic value is copied, walked and stored back when the interface is settable.
func walkIndirect(val reflect.Value, fn Func) error {
	if val.Kind() == reflect.Ptr {
		return walk(val.Elem(), fn)
	}

	inner := val.Elem()
	copied := reflect.New(inner.Type()).Elem()
	copied.Set(inner)
	if err := walk(copied, fn); err != nil {
		return err
	}
	if val.CanSet() {
		val.Set(copied)
	}
	return nil
}
