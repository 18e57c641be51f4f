package consent

import (
	"context"
	"time"

	"github.com/breeze-rmm/rdportal/internal/rdplog"
)

var log = rdplog.L("consent")

// Prompter is implemented by the production UI layer: it shows the
// request to the user and reports the decision, or closes decision
// without writing when the UI itself goes away (window closed, process
// signaled, user walked away).
type Prompter interface {
	Prompt(ctx context.Context, req Request) (decision <-chan bool)
}

// Interactive is the production gateway: presents req via a Prompter and
// defaults to Denied if the UI's decision channel closes without ever
// sending a value.
type Interactive struct {
	Prompter Prompter
}

func (i Interactive) RequestConsent(ctx context.Context, req Request, timeout time.Duration) Outcome {
	decision := i.Prompter.Prompt(ctx, req)

	select {
	case granted, ok := <-decision:
		if !ok {
			log.Warn("consent prompt closed without a decision, defaulting to denied", "session", req.SessionID)
			return Denied
		}
		if granted {
			return Granted
		}
		return Denied
	case <-ctx.Done():
		return Cancelled
	case <-time.After(timeout):
		return Timeout
	}
}
