package tracker

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/fakeentity/entity"
	"github.com/oomph-ac/fakeentity/fake"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

type mockViewer struct {
	mu      sync.Mutex
	pos     mgl64.Vec3
	packets []packet.Packet
}

func (v *mockViewer) WritePacket(pk packet.Packet) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.packets = append(v.packets, pk)
	return nil
}

func (v *mockViewer) Position() mgl64.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

func (v *mockViewer) setPosition(pos mgl64.Vec3) {
	v.mu.Lock()
	v.pos = pos
	v.mu.Unlock()
}

func (v *mockViewer) count() (spawns, despawns int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, pk := range v.packets {
		switch pk.(type) {
		case *packet.AddActor:
			spawns++
		case *packet.RemoveActor:
			despawns++
		}
	}
	return
}

func newZombie() *fake.Living {
	return fake.NewLiving(fake.Config{EntityType: "minecraft:zombie", Visible: true})
}

func TestTrackerRendersInRange(t *testing.T) {
	tr := New(nil)
	near := &mockViewer{pos: mgl64.Vec3{10, 0, 0}}
	far := &mockViewer{pos: mgl64.Vec3{100, 0, 0}}
	if err := tr.Join(near); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := tr.Join(far); err != nil {
		t.Fatalf("join: %v", err)
	}

	e := newZombie()
	if err := tr.Add(e, Options{ViewDistance: 32}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if tr.Len() != 1 {
		t.Fatalf("expected one tracked entity, got %d", tr.Len())
	}
	if !e.Observers().Visible(near) || e.Observers().Visible(far) {
		t.Fatalf("expected only the near viewer to see the entity")
	}
	if s, _ := near.count(); s != 1 {
		t.Fatalf("expected one spawn for near viewer, got %d", s)
	}

	near.setPosition(mgl64.Vec3{200, 0, 0})
	far.setPosition(mgl64.Vec3{0, 0, 5})
	if err := tr.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if e.Observers().Visible(near) || !e.Observers().Visible(far) {
		t.Fatalf("expected visibility to follow viewer positions")
	}
	if _, d := near.count(); d != 1 {
		t.Fatalf("expected near viewer to get a despawn, got %d", d)
	}
	if s, _ := far.count(); s != 1 {
		t.Fatalf("expected far viewer to get a spawn, got %d", s)
	}

	if err := tr.Tick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if s, _ := far.count(); s != 1 {
		t.Fatalf("expected no duplicate spawn on an unchanged tick, got %d", s)
	}
}

func TestTrackerGlobalEntity(t *testing.T) {
	tr := New(nil)
	e := newZombie()
	if err := tr.Add(e, Options{Global: true, ViewDistance: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	v := &mockViewer{pos: mgl64.Vec3{1000, 0, 1000}}
	if err := tr.Join(v); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !e.Observers().Visible(v) {
		t.Fatalf("expected global entity to be rendered regardless of distance")
	}
}

func TestTrackerUpdateAndRemove(t *testing.T) {
	tr := New(nil)
	v := &mockViewer{}
	_ = tr.Join(v)

	e := newZombie()
	_ = tr.Add(e, Options{})
	if err := tr.Add(e, Options{}); err == nil {
		t.Fatalf("expected adding the same entity twice to fail")
	}

	err := tr.Update(e.ID(), func(e Trackable) error {
		return e.Move(entity.Delta{Position: mgl64.Vec3{1, 0, 0}})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.Location().Position != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("expected update to move the entity, got %v", e.Location().Position)
	}

	if err := tr.Remove(e.ID()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if e.State() != fake.StateRemoved || tr.Len() != 0 {
		t.Fatalf("expected entity to be removed")
	}
	if _, d := v.count(); d != 1 {
		t.Fatalf("expected a despawn on removal, got %d", d)
	}
	if err := tr.Update(e.ID(), func(Trackable) error { return nil }); err == nil {
		t.Fatalf("expected update of an untracked entity to fail")
	}
	if err := tr.Remove(e.ID()); err == nil {
		t.Fatalf("expected removing an untracked entity to fail")
	}
}

func TestTrackerLeave(t *testing.T) {
	tr := New(nil)
	v := &mockViewer{}
	_ = tr.Join(v)
	e := newZombie()
	_ = tr.Add(e, Options{})

	tr.Leave(v)
	if e.Observers().Contains(v) {
		t.Fatalf("expected viewer to be forgotten")
	}
	if _, d := v.count(); d != 0 {
		t.Fatalf("expected no packets to be sent to a leaving viewer")
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if tr.Len() != 0 || e.State() != fake.StateRemoved {
		t.Fatalf("expected close to remove all entities")
	}
}

func TestTrackerConcurrentUpdates(t *testing.T) {
	tr := New(nil)
	e := newZombie()
	_ = tr.Add(e, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		v := &mockViewer{pos: mgl64.Vec3{float64(i), 0, 0}}
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = tr.Join(v)
			_ = tr.Tick()
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = tr.Update(e.ID(), func(e Trackable) error {
					return e.Move(entity.Delta{Position: mgl64.Vec3{0, 0.5, 0}})
				})
			}
		}()
	}
	wg.Wait()

	if got := e.Location().Position[1]; got != 40 {
		t.Fatalf("expected all 80 updates to be applied, got y=%v", got)
	}
}
