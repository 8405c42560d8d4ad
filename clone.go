package svh

import "reflect"

// Clone returns a deep value-copy of v. It backs the inheritance copy
// performed when a type is first pushed in a descendant scope: the copy is
// taken once, at push time, so later mutation on either side never leaks
// across nodes.
func Clone[T any](v T) T {
	var zero T
	cloned := cloneValue(reflect.ValueOf(v))
	if !cloned.IsValid() {
		return zero
	}
	if cloned.Type() != reflect.TypeOf(zero) {
		result := reflect.New(reflect.TypeOf(zero)).Elem()
		result.Set(cloned.Convert(reflect.TypeOf(zero)))
		return result.Interface().(T)
	}
	return cloned.Interface().(T)
}

// clonePayload deep-copies a node payload held as any. The payload keeps its
// dynamic type, so the typed accessors downcast the copy exactly as they
// would the original.
func clonePayload(payload any) any {
	if payload == nil {
		return nil
	}
	cloned := cloneValue(reflect.ValueOf(payload))
	if !cloned.IsValid() {
		return nil
	}
	return cloned.Interface()
}

// resetPayloadInPlace zeroes the value a payload pointer refers to, leaving
// the allocation itself intact. It reports false when the payload is not a
// usable pointer and a replacement must be constructed instead.
func resetPayloadInPlace(payload any) bool {
	rv := reflect.ValueOf(payload)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	elem := rv.Elem()
	if !elem.CanSet() {
		return false
	}
	elem.Set(reflect.Zero(elem.Type()))
	return true
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return reflect.ValueOf(v.Interface())
	}
}
