package ecsworld

// CreateArrayBytes allocates a length-element array of type at on e,
// zero-initialized, and returns a mutable view of its backing bytes.
func (w *World) CreateArrayBytes(e uint32, at ArrayElementType, length int) ([]byte, error) {
	slot, err := w.slot(e)
	if err != nil {
		return nil, w.fail(err)
	}
	if slot.arrays == nil {
		slot.arrays = make(map[ArrayElementType]*arrayBuffer)
	}
	if _, ok := slot.arrays[at]; ok {
		return nil, w.fail(ArrayAlreadyPresentError{Entity: e, Array: at})
	}
	size, err := w.schema.ArrayElementSize(at)
	if err != nil {
		return nil, w.fail(err)
	}
	buf := &arrayBuffer{
		elementType: at,
		elemSize:    int(size),
		data:        make([]byte, length*int(size)),
		length:      length,
	}
	slot.arrays[at] = buf

	def := slot.chunk.Definition().WithArray(at)
	w.migrate(slot, def)
	w.bumpVersion()
	w.logDebug("create_array", e, at)
	return buf.bytes(), nil
}

// ResizeArray changes the logical length of e's array, growing with
// zero bytes or truncating as needed.
func (w *World) ResizeArray(e uint32, at ArrayElementType, newLen int) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	buf, ok := slot.arrays[at]
	if !ok {
		return w.fail(ArrayNotPresentError{Entity: e, Array: at})
	}
	needed := newLen * buf.elemSize
	if needed > len(buf.data) {
		buf.data = append(buf.data, make([]byte, needed-len(buf.data))...)
	}
	if old := buf.length * buf.elemSize; needed > old {
		clear(buf.data[old:needed])
	}
	buf.length = newLen
	w.logDebug("resize_array", e, at)
	return nil
}

// DestroyArray releases e's array of type at.
func (w *World) DestroyArray(e uint32, at ArrayElementType) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if _, ok := slot.arrays[at]; !ok {
		return w.fail(ArrayNotPresentError{Entity: e, Array: at})
	}
	delete(slot.arrays, at)

	def := slot.chunk.Definition().WithoutArray(at)
	w.migrate(slot, def)
	w.bumpVersion()
	w.logDebug("destroy_array", e, at)
	return nil
}

// ArrayBytes returns a mutable view of e's array of type at.
func (w *World) ArrayBytes(e uint32, at ArrayElementType) ([]byte, error) {
	slot, err := w.slot(e)
	if err != nil {
		return nil, w.fail(err)
	}
	buf, ok := slot.arrays[at]
	if !ok {
		return nil, w.fail(ArrayNotPresentError{Entity: e, Array: at})
	}
	return buf.bytes(), nil
}

// ArrayLen returns the logical length of e's array of type at.
func (w *World) ArrayLen(e uint32, at ArrayElementType) (int, error) {
	slot, err := w.slot(e)
	if err != nil {
		return 0, w.fail(err)
	}
	buf, ok := slot.arrays[at]
	if !ok {
		return 0, w.fail(ArrayNotPresentError{Entity: e, Array: at})
	}
	return buf.length, nil
}
