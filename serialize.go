package ecsworld

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

const (
	formatMagic        = "WRLD"
	formatVersionMajor = uint16(1)
	formatVersionMinor = uint16(0)
)

// Serialize produces a self-describing binary blob of world's current
// state: a magic/version header, the Schema's registered types, the
// slot table, every chunk, and the free-id stack, followed by a
// trailing CRC32-C footer over everything written before it.
//
// deserialize(serialize(w)) is a logical round trip: the same entities,
// components, arrays, references, and parent/child structure, though
// not necessarily the same chunk-insertion or row order.
func Serialize(world *World) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(formatMagic)
	writeU16(&buf, formatVersionMajor)
	writeU16(&buf, formatVersionMinor)

	if err := writeSchema(&buf, world.schema); err != nil {
		return nil, err
	}
	writeSlotTable(&buf, world)
	writeChunks(&buf, world)
	writeFreeIDs(&buf, world)

	sum := crc32.Checksum(buf.Bytes(), crcTable)
	writeU32(&buf, sum)
	return buf.Bytes(), nil
}

func writeSchema(buf *bytes.Buffer, schema *Schema) error {
	var records []*typeRecord
	records = append(records, schema.components...)
	records = append(records, schema.arrays...)
	records = append(records, schema.tags...)
	writeU16(buf, uint16(len(records)))
	for _, rec := range records {
		buf.WriteByte(byte(rec.kind))
		buf.WriteByte(rec.index)
		writeU16(buf, rec.size)
		writeString(buf, rec.name)
		writeU16(buf, uint16(len(rec.layout)))
		for _, fl := range rec.layout {
			writeString(buf, fl.Name)
			writeU16(buf, fl.Offset)
			writeU16(buf, fl.Size)
		}
	}
	return nil
}

// writeSlotTable emits max-entity followed by a live-entry count and
// then one record per live entity. The live-entry count is not named
// explicitly by the slot table's field list, but some delimiter is
// required to know where per-entity records end and the chunk block
// begins (live ids are sparse after reuse), so it is written
// immediately after max-entity.
func writeSlotTable(buf *bytes.Buffer, world *World) {
	writeU32(buf, uint32(len(world.slots)-1))

	live := 0
	for id := uint32(1); id < uint32(len(world.slots)); id++ {
		if world.slots[id].state != StateFree {
			live++
		}
	}
	writeU32(buf, uint32(live))

	for id := uint32(1); id < uint32(len(world.slots)); id++ {
		slot := &world.slots[id]
		if slot.state == StateFree {
			continue
		}
		writeU32(buf, id)
		writeU32(buf, slot.parent)
		buf.WriteByte(byte(slot.state))

		writeU16(buf, uint16(len(slot.references)))
		for _, r := range slot.references {
			writeU32(buf, r)
		}

		writeU16(buf, uint16(len(slot.arrays)))
		for at, ab := range slot.arrays {
			buf.WriteByte(uint8(at))
			writeU32(buf, uint32(ab.length))
			buf.Write(ab.bytes())
		}
	}
}

func writeChunks(buf *bytes.Buffer, world *World) {
	writeU32(buf, uint32(len(world.chunkOrder)))
	for _, def := range world.chunkOrder {
		chunk := world.chunks[def]
		writeBitset(buf, def.Components)
		writeBitset(buf, def.Arrays)
		writeBitset(buf, def.Tags)
		writeU32(buf, uint32(chunk.Len()))
		for _, id := range chunk.Entities() {
			writeU32(buf, id)
		}
		for _, ct := range chunk.compOrder {
			buf.Write(chunk.columns[ct])
		}
	}
}

func writeFreeIDs(buf *bytes.Buffer, world *World) {
	writeU32(buf, uint32(len(world.freeIDs)))
	for _, id := range world.freeIDs {
		writeU32(buf, id)
	}
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func writeBitset(buf *bytes.Buffer, b Bitset) {
	for _, word := range b {
		var w [8]byte
		binary.LittleEndian.PutUint64(w[:], word)
		buf.Write(w[:])
	}
}

// decoder reads the sequential fields of the binary world format off an
// in-memory byte slice.
type decoder struct {
	data []byte
	pos  int
	err  error
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.pos+n > len(d.data) {
		d.err = io.ErrUnexpectedEOF
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *decoder) u16() uint16 {
	b := d.bytes(2)
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u32() uint32 {
	b := d.bytes(4)
	if d.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) u8() uint8 {
	b := d.bytes(1)
	if d.err != nil {
		return 0
	}
	return b[0]
}

func (d *decoder) string() string {
	n := d.u16()
	b := d.bytes(int(n))
	return string(b)
}

func (d *decoder) bitset() Bitset {
	var b Bitset
	for i := range b {
		w := d.bytes(8)
		if d.err != nil {
			return b
		}
		b[i] = binary.LittleEndian.Uint64(w)
	}
	return b
}

// Deserialize reconstructs a World from data produced by Serialize,
// validating the trailing CRC32-C footer first. schema must already
// have every component, array-element, and tag type the stream
// references registered under the same Go types; a type present in the
// stream that schema does not cover is a SchemaMismatchError.
func Deserialize(schema *Schema, data []byte) (*World, error) {
	if len(data) < 4+2+2+4 {
		return nil, fmt.Errorf("ecsworld: truncated world stream")
	}
	body := data[:len(data)-4]
	wantSum := binary.LittleEndian.Uint32(data[len(data)-4:])
	if gotSum := crc32.Checksum(body, crcTable); gotSum != wantSum {
		return nil, fmt.Errorf("ecsworld: world stream fails CRC32 check")
	}

	d := &decoder{data: body}
	magic := d.bytes(4)
	if d.err != nil || string(magic) != formatMagic {
		return nil, fmt.Errorf("ecsworld: not a world stream (bad magic)")
	}
	_ = d.u16() // major
	_ = d.u16() // minor

	typeIndex, err := readSchemaBlock(d, schema)
	if d.err != nil {
		return nil, d.err
	}
	if err != nil {
		return nil, err
	}

	w := NewWorld(schema)
	if err := readSlotTable(d, w, typeIndex); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}
	if err := readChunks(d, w); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}
	readFreeIDs(d, w)
	if d.err != nil {
		return nil, d.err
	}
	w.rebuildChildren()
	w.rebuildReverseRefs()
	return w, nil
}

// streamTypeIndex maps a (kind, stream index) pair, as read off the
// wire, to the corresponding index in the live schema, letting the
// destination Schema's registration order differ from the source's.
type streamTypeIndex struct {
	components map[uint8]ComponentType
	arrays     map[uint8]ArrayElementType
	tags       map[uint8]TagType
}

func readSchemaBlock(d *decoder, schema *Schema) (*streamTypeIndex, error) {
	idx := &streamTypeIndex{
		components: make(map[uint8]ComponentType),
		arrays:     make(map[uint8]ArrayElementType),
		tags:       make(map[uint8]TagType),
	}
	count := d.u16()
	for i := uint16(0); i < count; i++ {
		kind := TypeKind(d.u8())
		streamIndex := d.u8()
		size := d.u16() // validated against the schema record found below
		name := d.string()
		layoutCount := d.u16()
		for j := uint16(0); j < layoutCount; j++ {
			_ = d.string()
			_ = d.u16()
			_ = d.u16()
		}
		if d.err != nil {
			return nil, d.err
		}

		rec, ok := lookupByName(schema, kind, name)
		if !ok || rec.size != size {
			return nil, SchemaMismatchError{TypeName: name, Kind: kind}
		}
		switch kind {
		case KindComponent:
			idx.components[streamIndex] = ComponentType(rec.index)
		case KindArrayElement:
			idx.arrays[streamIndex] = ArrayElementType(rec.index)
		case KindTag:
			idx.tags[streamIndex] = TagType(rec.index)
		}
	}
	return idx, nil
}

func lookupByName(schema *Schema, kind TypeKind, name string) (*typeRecord, bool) {
	var list []*typeRecord
	switch kind {
	case KindComponent:
		list = schema.components
	case KindArrayElement:
		list = schema.arrays
	case KindTag:
		list = schema.tags
	}
	for _, rec := range list {
		if rec.name == name {
			return rec, true
		}
	}
	return nil, false
}

// readSlotTable reads max-entity, the live-entry count, and that many
// per-entity records (see writeSlotTable).
func readSlotTable(d *decoder, w *World, idx *streamTypeIndex) error {
	maxEntity := d.u32()
	if d.err != nil {
		return d.err
	}
	if maxEntity >= uint32(len(w.slots)) {
		w.slots = append(w.slots, make([]entitySlot, int(maxEntity)-len(w.slots)+1)...)
	}

	count := d.u32()
	for i := uint32(0); i < count; i++ {
		id := d.u32()
		parent := d.u32()
		state := EntityState(d.u8())

		if int(id) >= len(w.slots) {
			w.slots = append(w.slots, make([]entitySlot, int(id)-len(w.slots)+1)...)
		}
		slot := &w.slots[id]
		slot.entity = id
		slot.parent = parent
		slot.state = state

		refCount := d.u16()
		slot.references = make([]uint32, refCount)
		for r := uint16(0); r < refCount; r++ {
			slot.references[r] = d.u32()
		}

		arrCount := d.u16()
		if arrCount > 0 {
			slot.arrays = make(map[ArrayElementType]*arrayBuffer)
		}
		for a := uint16(0); a < arrCount; a++ {
			streamType := d.u8()
			length := d.u32()
			at, ok := idx.arrays[streamType]
			if !ok {
				return SchemaMismatchError{TypeName: fmt.Sprintf("array#%d", streamType), Kind: KindArrayElement}
			}
			elemSize, err := w.schema.ArrayElementSize(at)
			if err != nil {
				return err
			}
			data := d.bytes(int(length) * int(elemSize))
			owned := append([]byte(nil), data...)
			slot.arrays[at] = &arrayBuffer{elementType: at, elemSize: int(elemSize), data: owned, length: int(length)}
		}
		if d.err != nil {
			return d.err
		}
	}
	return nil
}

func readChunks(d *decoder, w *World) error {
	count := d.u32()
	for i := uint32(0); i < count; i++ {
		var def Definition
		def.Components = d.bitset()
		def.Arrays = d.bitset()
		def.Tags = d.bitset()
		rowCount := d.u32()
		if d.err != nil {
			return d.err
		}

		ids := make([]uint32, rowCount)
		for r := uint32(0); r < rowCount; r++ {
			ids[r] = d.u32()
		}

		chunk := w.getOrCreateChunk(def)
		chunk.entities = append(chunk.entities, ids...)
		for _, ct := range chunk.compOrder {
			size := chunk.componentSize(ct)
			n := int(rowCount) * size
			data := d.bytes(n)
			chunk.columns[ct] = append(chunk.columns[ct], data...)
		}
		if d.err != nil {
			return d.err
		}

		for r, id := range ids {
			if int(id) >= len(w.slots) {
				w.slots = append(w.slots, make([]entitySlot, int(id)-len(w.slots)+1)...)
			}
			w.slots[id].chunk = chunk
			w.slots[id].row = r
			if w.slots[id].state == StateFree {
				w.slots[id].state = StateEnabled
			}
		}
	}
	return nil
}

func readFreeIDs(d *decoder, w *World) {
	count := d.u32()
	for i := uint32(0); i < count; i++ {
		w.freeIDs = append(w.freeIDs, d.u32())
	}
}

// rebuildChildren recomputes every slot's children list from the
// parent pointers restored by Deserialize.
func (w *World) rebuildChildren() {
	for id := uint32(1); id < uint32(len(w.slots)); id++ {
		slot := &w.slots[id]
		if slot.state == StateFree || slot.parent == 0 {
			continue
		}
		pslot := &w.slots[slot.parent]
		pslot.children = append(pslot.children, id)
	}
}

// rebuildReverseRefs recomputes the reference reverse-index from the
// forward reference lists restored by Deserialize.
func (w *World) rebuildReverseRefs() {
	for id := uint32(1); id < uint32(len(w.slots)); id++ {
		slot := &w.slots[id]
		if slot.state == StateFree {
			continue
		}
		for i, target := range slot.references {
			if target == 0 {
				continue
			}
			w.reverseRefs[target] = append(w.reverseRefs[target], refEdge{source: id, rint: uint32(i + 1)})
		}
	}
}
