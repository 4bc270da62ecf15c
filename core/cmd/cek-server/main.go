package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	cek "github.com/hypersimple/Toy-Language-Interpreter/core"
	"github.com/hypersimple/Toy-Language-Interpreter/store"
)

func main() {
	cfg, err := cek.LoadConfig()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("load config")
	}
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("configure logging")
	}

	var recorder cek.TraceRecorder
	var st *store.Store
	if cfg.TraceDB != "" {
		st, err = store.Open(cfg.TraceDB)
		if err != nil {
			log.Fatal().Err(err).Msg("open trace store")
		}
		recorder = st
		n, err := st.Count()
		if err != nil {
			log.Fatal().Err(err).Msg("read trace store")
		}
		log.Info().Str("path", st.Path()).Int("traces", n).Msg("trace store opened")
	}

	srv := cek.NewServer(cfg, log, recorder)
	if err := srv.Listen(); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	// Handle shutdown signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info().Msg("shutting down...")
		srv.Shutdown()
		if st != nil {
			st.Close()
		}
		os.Exit(0)
	}()

	log.Info().
		Str("socket", cfg.Socket).
		Str("trace_db", cfg.TraceDB).
		Msg("cek server listening")
	srv.Run()
}
