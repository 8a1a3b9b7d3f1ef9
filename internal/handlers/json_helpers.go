package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// JSONResponse encodes data with nil slices rendered as [] instead of null,
// which is what array-typed frontend clients expect.
func JSONResponse(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(normalizeSlices(data))
}

// normalizeSlices walks pointers, slices and structs, replacing every nil
// slice with an empty one. time.Time values are passed through untouched.
func normalizeSlices(data interface{}) interface{} {
	if data == nil {
		return data
	}

	v := reflect.ValueOf(data)

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || v.Elem().Type() == timeType {
			return data
		}
		out := reflect.New(v.Elem().Type())
		out.Elem().Set(reflect.ValueOf(normalizeSlices(v.Elem().Interface())))
		return out.Interface()

	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0).Interface()
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(reflect.ValueOf(normalizeSlices(v.Index(i).Interface())))
		}
		return out.Interface()

	case reflect.Struct:
		if v.Type() == timeType {
			return data
		}
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if !field.CanInterface() || !out.Field(i).CanSet() {
				continue
			}
			switch field.Kind() {
			case reflect.Slice, reflect.Ptr, reflect.Struct:
				if field.Type() == timeType {
					out.Field(i).Set(field)
				} else {
					out.Field(i).Set(reflect.ValueOf(normalizeSlices(field.Interface())))
				}
			default:
				out.Field(i).Set(field)
			}
		}
		return out.Interface()
	}

	return data
}
