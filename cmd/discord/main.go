package main

import (
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/easylife-c/APHAv.2/internal/discord"
)

// Default values for optional configuration
const (
	DefaultHealthPort   = "8082"
	DefaultAPIURL       = "http://localhost:8080"
	DefaultReminderHour = 17
)

func main() {
	_ = godotenv.Load()

	setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	bot, err := discord.New(cfg)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	healthPort := os.Getenv("DISCORD_HEALTH_PORT")
	if healthPort == "" {
		healthPort = DefaultHealthPort
	}

	httpServer := discord.NewHTTPServer(healthPort, bot)
	httpServer.Start()
	defer httpServer.Stop()

	stopReminder := bot.StartDailyReminder(reminderHour())
	defer stopReminder()

	registerCommands(bot)

	forceUpdate := os.Getenv("DISCORD_FORCE_COMMAND_UPDATE") == "true"
	if forceUpdate {
		slog.Info("Force command update enabled via environment variable")
	}

	if err := bot.RegisterCommands(bot.Registry, forceUpdate); err != nil {
		slog.Error("Failed to register commands", "error", err)
		// Don't exit - bot can still run if commands are already registered
	}

	if err := bot.Run(); err != nil {
		slog.Error("Bot failed", "error", err)
		os.Exit(1)
	}
}

// registerCommands wires every slash command into the bot's registry
func registerCommands(bot *discord.Bot) {
	bot.Registry.Register(discord.SubmitCommand())
	bot.Registry.Register(discord.ApplyFertilizerCommand())
	bot.Registry.Register(discord.CancelCommand())
	bot.Registry.Register(discord.TankCommand())
	bot.Registry.Register(discord.RefillCommand())
}

// setupLogger configures structured logging to stdout
func setupLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)
}

// loadConfig loads and validates Discord bot configuration from environment variables
func loadConfig() (discord.Config, error) {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return discord.Config{}, errors.New("DISCORD_TOKEN is required")
	}

	appID := os.Getenv("DISCORD_APP_ID")
	if appID == "" {
		return discord.Config{}, errors.New("DISCORD_APP_ID is required")
	}

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	slog.Info("Configured API URL", "url", apiURL)

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		slog.Warn("API_KEY not set, discord bot requests may fail")
	}

	plantChannelID := os.Getenv("DISCORD_PLANT_CHANNEL_ID")
	if plantChannelID == "" {
		slog.Warn("DISCORD_PLANT_CHANNEL_ID not set, photo uploads and reminders disabled")
	}

	return discord.Config{
		Token:          token,
		AppID:          appID,
		APIURL:         apiURL,
		APIKey:         apiKey,
		PlantChannelID: plantChannelID,
	}, nil
}

// reminderHour reads the daily reminder hour, defaulting to late afternoon
func reminderHour() int {
	raw := os.Getenv("DISCORD_REMINDER_HOUR")
	if raw == "" {
		return DefaultReminderHour
	}
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		slog.Warn("Invalid DISCORD_REMINDER_HOUR, using default", "value", raw)
		return DefaultReminderHour
	}
	return hour
}
