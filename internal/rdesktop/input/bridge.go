package input

import (
	"context"

	"github.com/breeze-rmm/rdportal/internal/rdesktop/session"
)

// Pump drains the session manager's compositor-bound channel and replays
// each delivery through Inject, crossing from the Portal's trust domain
// into the compositor's own. The Portal side already authorized the
// event against its Session; Inject re-checks it independently against
// this Service's own session map rather than trusting that the delivery
// arrived honestly. Pump returns when ctx is canceled or the channel
// closes.
func (s *Service) Pump(ctx context.Context, deliveries <-chan session.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := s.Inject(d.SessionID, d.Event); err != nil {
				log.Warn("compositor-side ingress rejected a portal-validated event", "session", d.SessionID, "err", err)
			}
		}
	}
}
