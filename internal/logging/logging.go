package logging

import (
	"io"
	"os"
	"sync"

	"roulette-oracle/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
	closer io.Closer
)

// Init configures the global zerolog logger. Logs go to stdout and, when
// cfg.File is set, to a size-capped file as well.
func Init(cfg config.LogConfig) {
	var raw io.Writer = os.Stdout
	var fileErr error
	mu.Lock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	if cfg.File != "" {
		fw, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			fileErr = err
		} else {
			raw = io.MultiWriter(os.Stdout, fw)
			closer = fw
		}
	}
	output = raw
	mu.Unlock()

	console := raw
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: raw}
	}

	zerolog.SetGlobalLevel(cfg.ZeroLevel())
	ctx := zerolog.New(console).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	if sampler := cfg.Sampler(); sampler != nil {
		logger = logger.Sample(sampler)
	}
	log.Logger = logger

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", cfg.File).Msg("log file unavailable, using stdout")
	}
}

// Writer returns the raw sink shared with non-zerolog loggers such as the
// http request logger.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	output = os.Stdout
	return err
}
