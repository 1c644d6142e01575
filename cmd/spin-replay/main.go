// spin-replay loads a recorded history and prints what the engine would
// predict next. Outcomes come from a CSV export (-csv) or the arguments.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/config"
	"roulette-oracle/internal/export"
	"roulette-oracle/internal/logging"
	"roulette-oracle/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	csvPath := flag.String("csv", "", "CSV export to replay")
	asJSON := flag.Bool("json", false, "print the session overview as JSON")
	flag.Parse()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	engineCfg, err := config.LoadEngine()
	if err != nil {
		log.Fatal().Err(err).Msg("load engine config failed")
	}
	agentParams, strategyParams, err := engineCfg.Resolve()
	if err != nil {
		log.Fatal().Err(err).Msg("engine config invalid")
	}

	history, err := loadHistory(*csvPath, flag.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("read history failed")
	}

	mgr, err := appsession.NewManager(store.NewMemory(), appsession.Options{
		Agent:    agentParams,
		Strategy: strategyParams,
		Seed:     engineCfg.Seed,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("session manager init failed")
	}
	defer mgr.Close()

	ctx := context.Background()
	s, err := mgr.Create(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create session failed")
	}
	n, err := s.Import(ctx, history)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
	log.Info().Int("given", len(history)).Int("imported", n).Msg("history loaded")

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s.Overview()); err != nil {
			log.Fatal().Err(err).Msg("encode overview failed")
		}
		return
	}
	if err := writeReport(os.Stdout, s); err != nil {
		log.Fatal().Err(err).Msg("write report failed")
	}
}

func loadHistory(csvPath string, args []string) ([]int, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return export.ReadCSV(f)
	}
	return parseNumbers(args)
}

func parseNumbers(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("outcome %q: %w", a, err)
		}
		out = append(out, n)
	}
	return out, nil
}

