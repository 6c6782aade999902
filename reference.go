package ecsworld

// AddReference appends other to e's reference list and returns the
// new 1-based local index (rint). other may be 0 to reserve a slot
// that starts out cleared.
func (w *World) AddReference(e, other uint32) (uint32, error) {
	slot, err := w.slot(e)
	if err != nil {
		return 0, w.fail(err)
	}
	if other != 0 {
		if _, err := w.slot(other); err != nil {
			return 0, w.fail(err)
		}
	}
	slot.references = append(slot.references, other)
	rint := uint32(len(slot.references))
	if other != 0 {
		w.reverseRefs[other] = append(w.reverseRefs[other], refEdge{source: e, rint: rint})
	}
	w.logDebug("add_reference", e, other)
	return rint, nil
}

// SetReference overwrites the target of an existing reference slot.
func (w *World) SetReference(e uint32, rint uint32, other uint32) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if rint == 0 || int(rint) > len(slot.references) {
		return w.fail(ReferenceOutOfRangeError{Entity: e, Rint: rint})
	}
	if other != 0 {
		if _, err := w.slot(other); err != nil {
			return w.fail(err)
		}
	}
	old := slot.references[rint-1]
	if old != 0 {
		w.removeReverseEdge(old, e, rint)
	}
	slot.references[rint-1] = other
	if other != 0 {
		w.reverseRefs[other] = append(w.reverseRefs[other], refEdge{source: e, rint: rint})
	}
	return nil
}

// GetReference returns the entity id rint currently resolves to (0 if
// cleared).
func (w *World) GetReference(e uint32, rint uint32) (uint32, error) {
	slot, err := w.slot(e)
	if err != nil {
		return 0, w.fail(err)
	}
	if rint == 0 || int(rint) > len(slot.references) {
		return 0, w.fail(ReferenceOutOfRangeError{Entity: e, Rint: rint})
	}
	return slot.references[rint-1], nil
}

// RemoveReference clears rint to 0, preserving the indices of later
// references.
func (w *World) RemoveReference(e uint32, rint uint32) error {
	return w.SetReference(e, rint, 0)
}

// ReferenceCount returns the length of e's reference list (including
// cleared slots).
func (w *World) ReferenceCount(e uint32) (int, error) {
	slot, err := w.slot(e)
	if err != nil {
		return 0, w.fail(err)
	}
	return len(slot.references), nil
}
