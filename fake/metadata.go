package fake

import (
	"github.com/oomph-ac/fakeentity/entity"
)

// SetMetadata replaces the metadata of the entity with the entries passed, dropping any index not present
// in them, and sends the result to the observers.
func (e *Living) SetMetadata(entries ...entity.Metadatum) error {
	e.checkAlive("SetMetadata")

	e.metadata = entity.NewMetadata(entries...)
	return e.sendMetadata()
}

// AddMetadata sets the entries passed in the metadata of the entity, leaving all other indices untouched,
// and sends the result to the observers. If the entity had no metadata yet, it is created from the entries.
func (e *Living) AddMetadata(entries ...entity.Metadatum) error {
	e.checkAlive("AddMetadata")

	if e.metadata == nil {
		e.metadata = entity.NewMetadata(entries...)
	} else {
		for _, m := range entries {
			e.metadata.Set(m.Index, m.Value)
		}
	}
	return e.sendMetadata()
}

// RemoveMetadata removes the indices passed from the metadata of the entity and sends the result to the
// observers. Nothing happens if the entity has no metadata.
func (e *Living) RemoveMetadata(indices ...uint32) error {
	e.checkAlive("RemoveMetadata")

	if e.metadata == nil {
		return nil
	}
	for _, index := range indices {
		e.metadata.Delete(index)
	}
	return e.sendMetadata()
}

// sendMetadata sends the full metadata of the entity to all observers it is rendered for.
func (e *Living) sendMetadata() error {
	if !e.Visible() || e.metadata == nil {
		return nil
	}

	pk := e.packets.metadata()
	pk.EntityMetadata = e.metadata.Encode(pk.EntityMetadata)
	return e.broadcast(pk)
}
