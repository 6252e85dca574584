package virtual

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/fakeentity/oerror"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"go.uber.org/atomic"
)

// Conn is the connection of a player. *minecraft.Conn satisfies Conn.
type Conn interface {
	WritePacket(pk packet.Packet) error
	IdentityData() login.IdentityData
}

// Player is a connected player observing fake entities. It keeps track of the last position the player
// reported so that entities may be rendered based on range.
type Player struct {
	conn Conn
	log  *slog.Logger

	pos    atomic.Value
	closed atomic.Bool
}

// NewPlayer creates a new player from the connection and initial position passed.
func NewPlayer(conn Conn, pos mgl64.Vec3, log *slog.Logger) *Player {
	if log == nil {
		log = slog.Default()
	}
	p := &Player{
		conn: conn,
		log:  log.With("player", conn.IdentityData().DisplayName),
	}
	p.pos.Store(pos)
	return p
}

// Name returns the display name of the player.
func (p *Player) Name() string {
	return p.conn.IdentityData().DisplayName
}

// Position returns the last known position of the player.
func (p *Player) Position() mgl64.Vec3 {
	return p.pos.Load().(mgl64.Vec3)
}

// SetPosition updates the last known position of the player.
func (p *Player) SetPosition(pos mgl64.Vec3) {
	p.pos.Store(pos)
}

// Move moves the player by the delta passed.
func (p *Player) Move(delta mgl64.Vec3) {
	p.pos.Store(p.Position().Add(delta))
}

// WritePacket writes a packet to the connection of the player. Writing to a closed player fails, and panics
// raised by the connection are reported to sentry and returned as an error.
func (p *Player) WritePacket(pk packet.Packet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("WritePacket() panic", "err", r)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("player", p.Name())
			})
			hub.Recover(oerror.New("%v", r))
			hub.Flush(time.Second * 5)
			err = oerror.New("WritePacket() panic: %v", r)
		}
	}()

	if p.closed.Load() {
		return oerror.New("player %s was closed", p.Name())
	}
	return p.conn.WritePacket(pk)
}

// Closed returns true if the player was closed.
func (p *Player) Closed() bool {
	return p.closed.Load()
}

// Close marks the player as closed. Packets written afterwards are dropped with an error.
func (p *Player) Close() {
	p.closed.Store(true)
}
