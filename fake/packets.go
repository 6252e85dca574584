package fake

import (
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// PacketKind is a kind of packet sent about a fake entity. Each fake entity caches at most one packet of
// every kind.
type PacketKind uint8

const (
	PacketSpawn PacketKind = iota
	PacketDespawn
	PacketMove
	PacketMoveLook
	PacketTeleport
	PacketVelocity
	PacketMetadata

	packetKindCount
)

// String ...
func (k PacketKind) String() string {
	switch k {
	case PacketSpawn:
		return "spawn"
	case PacketDespawn:
		return "despawn"
	case PacketMove:
		return "move"
	case PacketMoveLook:
		return "move-look"
	case PacketTeleport:
		return "teleport"
	case PacketVelocity:
		return "velocity"
	case PacketMetadata:
		return "metadata"
	}
	return "unknown"
}

const (
	moveFlags     = packet.MoveActorDeltaFlagHasX | packet.MoveActorDeltaFlagHasY | packet.MoveActorDeltaFlagHasZ
	moveLookFlags = moveFlags | packet.MoveActorDeltaFlagHasRotX | packet.MoveActorDeltaFlagHasRotY | packet.MoveActorDeltaFlagHasRotZ
)

// packetConstructors holds a constructor for every PacketKind, binding the entity ID passed into the
// packet created.
var packetConstructors = [packetKindCount]func(id int64) packet.Packet{
	PacketSpawn: func(id int64) packet.Packet {
		return &packet.AddActor{EntityUniqueID: id, EntityRuntimeID: uint64(id)}
	},
	PacketDespawn: func(id int64) packet.Packet {
		return &packet.RemoveActor{EntityUniqueID: id}
	},
	PacketMove: func(id int64) packet.Packet {
		return &packet.MoveActorDelta{EntityRuntimeID: uint64(id), Flags: moveFlags}
	},
	PacketMoveLook: func(id int64) packet.Packet {
		return &packet.MoveActorDelta{EntityRuntimeID: uint64(id), Flags: moveLookFlags}
	},
	PacketTeleport: func(id int64) packet.Packet {
		return &packet.MoveActorAbsolute{EntityRuntimeID: uint64(id), Flags: packet.MoveFlagTeleport}
	},
	PacketVelocity: func(id int64) packet.Packet {
		return &packet.SetActorMotion{EntityRuntimeID: uint64(id)}
	},
	PacketMetadata: func(id int64) packet.Packet {
		return &packet.SetActorData{EntityRuntimeID: uint64(id)}
	},
}

// packetCache lazily creates the packets of a single fake entity. A packet is created the first time it is
// needed and mutated in place afterwards, it is never replaced.
type packetCache struct {
	id    int64
	slots [packetKindCount]packet.Packet
}

// packetFor returns the cached packet of the kind passed, creating it first if needed.
func (c *packetCache) packetFor(kind PacketKind) packet.Packet {
	if pk := c.slots[kind]; pk != nil {
		return pk
	}
	pk := packetConstructors[kind](c.id)
	c.slots[kind] = pk
	return pk
}

// cached returns the packet of the kind passed if it was already created.
func (c *packetCache) cached(kind PacketKind) (packet.Packet, bool) {
	pk := c.slots[kind]
	return pk, pk != nil
}

func (c *packetCache) spawn() *packet.AddActor {
	return c.packetFor(PacketSpawn).(*packet.AddActor)
}

func (c *packetCache) despawn() *packet.RemoveActor {
	return c.packetFor(PacketDespawn).(*packet.RemoveActor)
}

func (c *packetCache) move() *packet.MoveActorDelta {
	return c.packetFor(PacketMove).(*packet.MoveActorDelta)
}

func (c *packetCache) moveLook() *packet.MoveActorDelta {
	return c.packetFor(PacketMoveLook).(*packet.MoveActorDelta)
}

func (c *packetCache) teleport() *packet.MoveActorAbsolute {
	return c.packetFor(PacketTeleport).(*packet.MoveActorAbsolute)
}

func (c *packetCache) velocity() *packet.SetActorMotion {
	return c.packetFor(PacketVelocity).(*packet.SetActorMotion)
}

func (c *packetCache) metadata() *packet.SetActorData {
	return c.packetFor(PacketMetadata).(*packet.SetActorData)
}
