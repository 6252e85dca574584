package fake

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/fakeentity/oerror"
	"github.com/oomph-ac/fakeentity/viewer"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// broadcast sends the packets passed, in order, to every observer the entity is currently rendered for.
// A failure for one observer does not stop the packets from being sent to the others. All failures are
// returned joined together.
func (e *Living) broadcast(pks ...packet.Packet) error {
	var errs []error
	e.observers.ForEachVisible(func(o viewer.Observer) {
		for _, pk := range pks {
			if err := e.send(o, pk); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// send writes a single packet to an observer. Panics raised by the observer are recovered, reported to
// sentry and returned as an error.
func (e *Living) send(o viewer.Observer, pk packet.Packet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("entity_id", strconv.FormatInt(e.id, 10))
				scope.SetTag("packet", fmt.Sprintf("%T", pk))
			})
			hub.Recover(r)
			err = oerror.New("observer panicked writing %T: %v", pk, r)
		}
		if err != nil {
			e.log.Debug("failed sending packet to observer", "packet", fmt.Sprintf("%T", pk), "err", err)
		}
	}()

	if err := o.WritePacket(pk); err != nil {
		return fmt.Errorf("write %T: %w", pk, err)
	}
	return nil
}
