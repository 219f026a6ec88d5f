package gcarena

import (
	"fmt"
	"reflect"
	"unsafe"
)

// AllocValue allocates a zeroed slot sized for a T and returns its Ref.
// T must not contain Go pointers: slot memory is not scanned by the Go
// garbage collector. Use Refs to link records instead.
func AllocValue[T any](a *Arena) (Ref, error) {
	var zero T
	if err := checkPointerFree(reflect.TypeOf(zero)); err != nil {
		return Nil, err
	}
	return a.Allocate(int(unsafe.Sizeof(zero)))
}

// Value returns a *T located in the slot behind ref. The pointer is valid
// until the slot is swept. Value panics if ref is not allocated or its slot
// is smaller than a T.
func Value[T any](a *Arena, ref Ref) *T {
	var zero T
	b := a.Bytes(ref)
	if len(b) < int(unsafe.Sizeof(zero)) {
		panic(fmt.Sprintf("gcarena: ref %d holds %d bytes, %T needs %d", ref, len(b), zero, unsafe.Sizeof(zero)))
	}
	return (*T)(unsafe.Pointer(&b[0]))
}

// checkPointerFree rejects types whose values hold Go pointers.
func checkPointerFree(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: interface type", ErrBadType)
	}
	if hasPointers(t) {
		return fmt.Errorf("%w: %s", ErrBadType, t)
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.String, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
