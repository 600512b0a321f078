package kvstore

import "github.com/okian/gamerec/pkg/logger"

// Option applies a configuration option to a BadgerStore.
type Option func(*BadgerStore)

// WithLogger sets the logger badger diagnostics are written to.
func WithLogger(l logger.Logger) Option {
	return func(s *BadgerStore) {
		if l != nil {
			s.logger = l
		}
	}
}
