package ecsworld

import "unsafe"

func valueBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// AddComponent registers T if needed, then adds it to e with the given
// initial value.
func AddComponent[T any](w *World, e uint32, value T) error {
	ct, err := RegisterComponent[T](w.schema)
	if err != nil {
		return err
	}
	return w.AddComponentBytes(e, ct, valueBytes(&value))
}

// SetComponent overwrites e's existing component of type T.
func SetComponent[T any](w *World, e uint32, value T) error {
	ct, err := ComponentTypeOf[T](w.schema)
	if err != nil {
		return err
	}
	return w.SetComponentBytes(e, ct, valueBytes(&value))
}

// RemoveComponent removes e's component of type T.
func RemoveComponent[T any](w *World, e uint32) error {
	ct, err := ComponentTypeOf[T](w.schema)
	if err != nil {
		return err
	}
	return w.RemoveComponent(e, ct)
}

// GetComponent returns a live pointer into e's column storage for
// component type T.
func GetComponent[T any](w *World, e uint32) (*T, error) {
	ct, err := ComponentTypeOf[T](w.schema)
	if err != nil {
		return nil, err
	}
	bytes, err := w.ComponentBytes(e, ct)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(bytes))), nil
}

// TryGetComponent is the non-erroring counterpart of GetComponent.
func TryGetComponent[T any](w *World, e uint32) (*T, bool) {
	ct, err := ComponentTypeOf[T](w.schema)
	if err != nil {
		return nil, false
	}
	bytes, ok := w.TryComponentBytes(e, ct)
	if !ok {
		return nil, false
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(bytes))), true
}

// CreateArray allocates a length-element T array on e and returns a
// live slice view into its backing storage.
func CreateArray[T any](w *World, e uint32, length int) ([]T, error) {
	at, err := RegisterArrayElement[T](w.schema)
	if err != nil {
		return nil, err
	}
	bytes, err := w.CreateArrayBytes(e, at, length)
	if err != nil {
		return nil, err
	}
	return bytesToSlice[T](bytes), nil
}

// GetArray returns e's array of type T as a live slice view.
func GetArray[T any](w *World, e uint32) ([]T, error) {
	at, err := ArrayElementTypeOf[T](w.schema)
	if err != nil {
		return nil, err
	}
	bytes, err := w.ArrayBytes(e, at)
	if err != nil {
		return nil, err
	}
	return bytesToSlice[T](bytes), nil
}

func bytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := len(b) / size
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}
