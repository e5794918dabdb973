package aiusage

import "context"

// Counter is the persistence contract of the quota.
type Counter interface {
	Increment(ctx context.Context, client string) (int64, error)
	Decrement(ctx context.Context, client string) error
	Used(ctx context.Context, client string) (int64, error)
}

// Service orchestrates per-client run quota logic.
// A nil *Service allows every run, which is how the quota is disabled.
type Service struct {
	store Counter
	limit int64
}

// NewService creates a Service allowing limit runs per client per day.
// A non-positive limit falls back to DefaultRunsPerDay.
func NewService(store Counter, limit int) *Service {
	if limit <= 0 {
		limit = DefaultRunsPerDay
	}
	return &Service{store: store, limit: int64(limit)}
}

// UseRun consumes one run from the client's daily allowance.
// Returns ErrQuotaExceeded when the allowance is exhausted; the refused run is not counted.
func (s *Service) UseRun(ctx context.Context, client string) error {
	if s == nil {
		return nil
	}
	n, err := s.store.Increment(ctx, client)
	if err != nil {
		return err
	}
	if n <= s.limit {
		return nil
	}
	if err := s.store.Decrement(ctx, client); err != nil {
		return err
	}
	return ErrQuotaExceeded
}

// Remaining reports how many runs client has left today.
func (s *Service) Remaining(ctx context.Context, client string) (int64, error) {
	if s == nil {
		return -1, nil
	}
	used, err := s.store.Used(ctx, client)
	if err != nil {
		return 0, err
	}
	if used >= s.limit {
		return 0, nil
	}
	return s.limit - used, nil
}
