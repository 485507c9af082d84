// File: services/booking/retry.go
package booking

import (
	"context"
	"time"

	appointmentRepo "clinicbook/database/repository/appointment"
)

const (
	defaultMaxRetries = 3
	defaultRetryBase  = 100 * time.Millisecond
)

// withRetry runs op, retrying only transient storage failures with
// exponential backoff. Authoritative results (success, conflict, not-found)
// return immediately; a still-transient error after the final attempt is
// returned for the caller to surface as fatal. The wait is bounded and
// respects context cancellation, so no commit attempt blocks indefinitely.
func (s *DefaultBookingService) withRetry(ctx context.Context, op func() error) error {
	retries := s.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	base := s.RetryBase
	if base <= 0 {
		base = defaultRetryBase
	}

	var err error
	for attempt := 0; attempt < retries; attempt++ {
		err = op()
		if err == nil || !appointmentRepo.IsTransient(err) {
			return err
		}
		if attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(base << attempt):
		}
	}
	return err
}
