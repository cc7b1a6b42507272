package ranking

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithSeed seeds the treap priorities so tree shape is reproducible.
func WithSeed(seed int64) Option {
	return func(s *TreapStore) {
		s.seed = seed
	}
}
