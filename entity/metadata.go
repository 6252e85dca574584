package entity

import (
	"github.com/elliotchance/orderedmap/v2"
)

const (
	DataKeyFlags             = iota
	DataKeyName              = 4
	DataKeyOwnerID           = 5
	DataKeyTargetID          = 6
	DataKeyFireworkMetadata  = 16
	DataKeyScale             = 38
	DataKeyBoundingBoxWidth  = 53
	DataKeyBoundingBoxHeight = 54
)

const (
	DataFlagSneaking  = 1
	DataFlagSprinting = 3
	DataFlagImmobile  = 16
)

// Metadatum is a single indexed metadata value of an entity.
type Metadatum struct {
	Index uint32
	Value any
}

// Metadata is an ordered set of metadata values of an entity, keyed by their index. Setting an index never
// affects any other index.
type Metadata struct {
	values *orderedmap.OrderedMap[uint32, any]
}

// NewMetadata creates a Metadata set seeded with the entries passed, in order.
func NewMetadata(entries ...Metadatum) *Metadata {
	m := &Metadata{values: orderedmap.NewOrderedMap[uint32, any]()}
	for _, e := range entries {
		m.values.Set(e.Index, e.Value)
	}
	return m
}

// Set sets the value at the index passed, keeping its position if it was already present.
func (m *Metadata) Set(index uint32, value any) {
	m.values.Set(index, value)
}

// Get returns the value at the index passed and whether it was present.
func (m *Metadata) Get(index uint32) (any, bool) {
	return m.values.Get(index)
}

// Delete removes the index passed. It returns false if the index was not present.
func (m *Metadata) Delete(index uint32) bool {
	return m.values.Delete(index)
}

// Len returns the amount of indices set.
func (m *Metadata) Len() int {
	return m.values.Len()
}

// Indices returns all indices set, in the order they were first set.
func (m *Metadata) Indices() []uint32 {
	return m.values.Keys()
}

// Entries returns all entries, in the order their indices were first set.
func (m *Metadata) Entries() []Metadatum {
	entries := make([]Metadatum, 0, m.values.Len())
	for el := m.values.Front(); el != nil; el = el.Next() {
		entries = append(entries, Metadatum{Index: el.Key, Value: el.Value})
	}
	return entries
}

// SetFlag sets the flag at the bit index passed in the int64 flag set stored at key.
func (m *Metadata) SetFlag(key uint32, index uint8) {
	v, _ := m.values.Get(key)
	flags, _ := v.(int64)
	m.values.Set(key, flags|int64(1)<<(index%64))
}

// Flag returns true if the flag at the bit index passed is set in the int64 flag set stored at key.
func (m *Metadata) Flag(key uint32, index uint8) bool {
	v, _ := m.values.Get(key)
	flags, _ := v.(int64)
	return flags&(int64(1)<<(index%64)) != 0
}

// Encode writes every entry into dst, clearing it first, and returns it. A nil dst is allocated.
func (m *Metadata) Encode(dst map[uint32]any) map[uint32]any {
	if dst == nil {
		dst = make(map[uint32]any, m.values.Len())
	}
	clear(dst)
	for el := m.values.Front(); el != nil; el = el.Next() {
		dst[el.Key] = el.Value
	}
	return dst
}

// Clone returns a copy of the metadata set. Values themselves are not deep copied.
func (m *Metadata) Clone() *Metadata {
	return NewMetadata(m.Entries()...)
}
