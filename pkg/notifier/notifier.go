// Package notifier broadcasts lifecycle events to interested listeners.
// Delivery is best-effort: no acknowledgment, no persistence guarantee to the
// caller, no cross-channel ordering. Callers log and swallow publish failures;
// notification is never part of an operation's correctness contract.
package notifier

import "context"

type Notifier interface {
	Publish(ctx context.Context, key string, payload any) error
}
