package dietmac

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/paralmehmet/swanky/logger"
)

// QueueCapacity is the default bound on the pending zero-check list;
// reaching it forces a batched flush.
const QueueCapacity = 3_000_000

// Option defines an option for altering the behavior of an evaluator. See
// the descriptions of functions returning instances of this type for
// implemented options.
type Option func(*config) error

type config struct {
	noBatching    bool
	queueCapacity int
	log           zerolog.Logger
}

func newConfig(opts ...Option) (config, error) {
	cfg := config{
		queueCapacity: QueueCapacity,
		log:           logger.Logger(),
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// WithNoBatching selects immediate zero-check flushing: every AssertZero
// performs its own round trip. This trades throughput for per-assertion
// determinism, useful when debugging.
func WithNoBatching() Option {
	return func(cfg *config) error {
		cfg.noBatching = true
		return nil
	}
}

// WithQueueCapacity overrides the zero-check queue capacity.
func WithQueueCapacity(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("queue capacity must be positive, got %d", n)
		}
		cfg.queueCapacity = n
		return nil
	}
}

// WithLogger sets the zerolog destination for progress and finalize
// summaries. Defaults to the module's global logger.
func WithLogger(log zerolog.Logger) Option {
	return func(cfg *config) error {
		cfg.log = log
		return nil
	}
}
