package repository

// Option applies a configuration option to the HistoryStore.
type Option func(*HistoryStore)

// WithCapacity sets how many events are kept before the oldest is evicted.
func WithCapacity(n int) Option {
	return func(s *HistoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}
