package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"shake_race_server/logic"
	"shake_race_server/network"
	"shake_race_server/storage"
)

var CLI struct {
	Port   int    `help:"Port to listen on." default:"8080"`
	DB     string `help:"Path to the sqlite race-result database." default:"race_results.db"`
	Config string `help:"Optional JSON file with initial race settings." type:"path"`
	Debug  bool   `help:"Whether to enable debug logging."`
}

// loadSettings merges an optional JSON settings file over the defaults and
// clamps the result.
func loadSettings(path string) (logic.Settings, error) {
	settings := logic.DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return settings, fmt.Errorf("read settings file: %w", err)
		}
		if err := json.Unmarshal(data, &settings); err != nil {
			return settings, fmt.Errorf("parse settings file: %w", err)
		}
	}
	logic.ClampSettings(&settings)
	return settings, nil
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	kong.Parse(&CLI,
		kong.Name("shake-race-server"),
		kong.Description("Party-race server: shake your phone, move your team."),
		kong.UsageOnError())

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	settings, err := loadSettings(CLI.Config)
	if err != nil {
		log.Fatal().Err(err).Msg("loading settings")
	}

	game := logic.NewGame(settings)
	hub := network.NewHub(game)

	store, err := storage.Open(CLI.DB)
	if err != nil {
		log.Warn().Err(err).Msg("result store unavailable, race history disabled")
	} else {
		defer store.Close()
		hub.OnRaceFinished = func(winner *logic.Team, duration time.Duration) {
			result := storage.RaceResult{
				TeamID:     winner.ID,
				TeamName:   winner.Name,
				Players:    len(winner.Players),
				DurationMs: duration.Milliseconds(),
				FinishedAt: time.Now(),
			}
			if err := store.SaveResult(result); err != nil {
				log.Error().Err(err).Msg("recording race result")
			}
		}
	}

	go hub.Run()

	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWs(hub, w, r)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/api/results", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "race history disabled", http.StatusServiceUnavailable)
			return
		}
		results, err := store.RecentResults(50)
		if err != nil {
			log.Error().Err(err).Msg("listing race results")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	})

	addr := fmt.Sprintf(":%d", CLI.Port)
	log.Info().Str("addr", addr).Msg("shake race server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}
