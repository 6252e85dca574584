package viewer

import (
	"sync"
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

type nopObserver struct {
	name string
}

func (*nopObserver) WritePacket(packet.Packet) error { return nil }

func TestRegistryVisibility(t *testing.T) {
	a, b := &nopObserver{"a"}, &nopObserver{"b"}
	r := NewRegistry(a)

	if r.Visible(a) {
		t.Fatalf("expected initial observer to be flagged not visible")
	}
	if !r.Contains(a) || r.Contains(b) {
		t.Fatalf("unexpected membership: a=%v b=%v", r.Contains(a), r.Contains(b))
	}
	if r.Visible(b) {
		t.Fatalf("expected absent observer to be not visible")
	}

	r.Set(a, true)
	r.Set(b, false)
	if !r.Visible(a) || r.Visible(b) {
		t.Fatalf("unexpected flags after Set: a=%v b=%v", r.Visible(a), r.Visible(b))
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 observers, got %d", r.Len())
	}

	var visited []Observer
	r.ForEachVisible(func(o Observer) {
		visited = append(visited, o)
	})
	if len(visited) != 1 || visited[0] != a {
		t.Fatalf("expected only a to be visited, got %v", visited)
	}

	r.Remove(a)
	if r.Visible(a) || r.Contains(a) {
		t.Fatalf("expected a to be removed")
	}

	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("expected empty registry after Clear, got %d", r.Len())
	}
}

func TestRegistryForEachVisibleAllowsMutation(t *testing.T) {
	a, b := &nopObserver{"a"}, &nopObserver{"b"}
	r := NewRegistry()
	r.Set(a, true)
	r.Set(b, true)

	calls := 0
	r.ForEachVisible(func(o Observer) {
		calls++
		r.Set(o, false)
	})
	if calls != 2 {
		t.Fatalf("expected 2 callbacks, got %d", calls)
	}
	if r.Visible(a) || r.Visible(b) {
		t.Fatalf("expected mutations made during iteration to be applied")
	}
}

func TestRegistryObserversIsCopy(t *testing.T) {
	a := &nopObserver{"a"}
	r := NewRegistry()
	r.Set(a, true)

	m := r.Observers()
	m[a] = false
	if !r.Visible(a) {
		t.Fatalf("expected Observers to return a copy")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	const (
		observers = 64
		readers   = 16
		rounds    = 50
	)

	all := make([]*nopObserver, observers)
	for i := range all {
		all[i] = &nopObserver{}
	}
	r := NewRegistry()

	var wg sync.WaitGroup
	for _, o := range all {
		wg.Add(1)
		go func(o *nopObserver) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				r.Set(o, i%2 == 0)
			}
			r.Set(o, true)
		}(o)
	}

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				seen := make(map[Observer]int, observers)
				r.ForEachVisible(func(o Observer) {
					seen[o]++
				})
				for o, n := range seen {
					if n != 1 {
						t.Errorf("observer %p visited %d times in one iteration", o, n)
					}
				}
			}
		}()
	}
	wg.Wait()

	for _, o := range all {
		if !r.Visible(o) {
			t.Fatalf("lost update for observer %p", o)
		}
	}

	count := 0
	r.ForEachVisible(func(Observer) { count++ })
	if count != observers {
		t.Fatalf("expected %d visible observers, got %d", observers, count)
	}
}
