package consult

import "context"

// WaitSettled blocks until the session has nothing pending: no transcription
// running and no summary scheduled or in flight. It returns the settled view.
func WaitSettled(ctx context.Context, s *Session) (View, error) {
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for {
		v := s.Snapshot()
		if !v.Pending() {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return v, ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return s.Snapshot(), ErrSessionClosed
			}
		}
	}
}
