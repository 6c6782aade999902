package ecsworld

// EntityState is the enabled/disabled lifecycle state of an entity
// slot.
type EntityState uint8

const (
	// StateFree marks a destroyed or never-allocated slot.
	StateFree EntityState = iota
	// StateEnabled marks a live, enabled entity.
	StateEnabled
	// StateDisabled marks a live entity explicitly disabled by the
	// caller.
	StateDisabled
	// StateEnabledButDisabledByAncestor marks a live entity whose own
	// enabled intent is true but which reads as disabled because an
	// ancestor is disabled.
	StateEnabledButDisabledByAncestor
)

func (s EntityState) String() string {
	switch s {
	case StateFree:
		return "Free"
	case StateEnabled:
		return "Enabled"
	case StateDisabled:
		return "Disabled"
	case StateEnabledButDisabledByAncestor:
		return "EnabledButDisabledByAncestor"
	default:
		return "Unknown"
	}
}

type arrayBuffer struct {
	elementType ArrayElementType
	elemSize    int
	data        []byte
	length      int
}

func (a *arrayBuffer) bytes() []byte {
	return a.data[:a.length*a.elemSize]
}

// entitySlot is the per-entity record the World's slot table holds.
// children/references are created lazily on first use.
type entitySlot struct {
	entity     uint32
	parent     uint32
	children   []uint32
	references []uint32 // 1-based: rint r reads references[r-1]; 0 = cleared
	arrays     map[ArrayElementType]*arrayBuffer
	chunk      *Chunk
	row        int
	state      EntityState
}

func (s *entitySlot) reset(id uint32) {
	s.entity = id
	s.parent = 0
	s.children = nil
	s.references = nil
	s.arrays = nil
	s.chunk = nil
	s.row = 0
	s.state = StateEnabled
}

func (s *entitySlot) free() {
	s.parent = 0
	s.children = nil
	s.references = nil
	s.arrays = nil
	s.chunk = nil
	s.row = 0
	s.state = StateFree
}

func removeChild(children []uint32, id uint32) []uint32 {
	for i, c := range children {
		if c == id {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}
