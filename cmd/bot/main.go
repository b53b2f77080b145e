// Package main is the entry point for the truth-or-dare Telegram bot.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-dare-bot/internal/ai/openai"
	"telegram-dare-bot/internal/bot"
	"telegram-dare-bot/internal/config"
	"telegram-dare-bot/internal/game"
	"telegram-dare-bot/internal/resolver"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// A local .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	// Completion oracle
	oracle, err := openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create completion client")
	}

	// Core: one game per process, resolver and engine around it
	currentGame := game.New()
	engine := game.NewEngine(cfg.Game.MinPlayers)
	actionResolver := resolver.New(cfg.Bot.Name, oracle, cfg.Game.TranscriptLimit)

	deps := &bot.Dependencies{
		Config:   cfg,
		Resolver: actionResolver,
		Engine:   engine,
		Game:     currentGame,
	}

	dareBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		dareBot.Announce("Someone spun the ol' bot up. How are y'all?")
		dareBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	dareBot.Announce("I am being closed server-side. Goodbye for now!")
	dareBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
