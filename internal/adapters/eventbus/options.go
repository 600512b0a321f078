package eventbus

import "github.com/okian/gamerec/pkg/logger"

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithLogger sets the bus logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}
