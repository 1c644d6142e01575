package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roulette-oracle/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oracle.log")
	Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1, Service: "oracle-test"})
	t.Cleanup(func() {
		_ = Close()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	log.Info().Int("spin", 17).Msg("spin recorded")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"service":"oracle-test"`) || !strings.Contains(line, `"spin":17`) {
		t.Fatalf("unexpected log line: %s", line)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("global level = %v, want debug", zerolog.GlobalLevel())
	}
}

func TestInitFallsBackOnBadLevel(t *testing.T) {
	Init(config.LogConfig{Level: "loud"})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("global level = %v, want info", zerolog.GlobalLevel())
	}
	if Writer() != os.Stdout {
		t.Fatalf("expected stdout writer without LOG_FILE")
	}
}
