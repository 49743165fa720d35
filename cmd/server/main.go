package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PartyStarter240/donutmacro-discord-bot/internal/config"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/discord"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/handler"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/middleware"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/registry"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	cfg := config.Load()
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN is required")
	}
	if cfg.GuildID == "" {
		log.Fatal("DISCORD_GUILD_ID is required")
	}

	// In-memory state, reset on restart
	channels := registry.NewChannelRegistry()
	codes := registry.NewCodeStore(cfg.CodeTTL)
	links := registry.NewLinkRegistry()

	// Discord bot
	bot, err := discord.NewBot(cfg.DiscordToken, discord.BotConfig{
		GuildID:     cfg.GuildID,
		CategoryID:  cfg.CategoryID,
		AdminRoleID: cfg.AdminRoleID,
	}, channels, codes, links)
	if err != nil {
		log.Fatalf("Failed to configure Discord bot: %v", err)
	}
	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to connect to Discord: %v", err)
	}

	// Expired-code sweeper
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if n := codes.Sweep(); n > 0 {
				log.Printf("[codes] swept %d expired verification codes", n)
			}
		}),
	); err != nil {
		log.Fatalf("Failed to schedule code sweep: %v", err)
	}
	sched.Start()

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    64 * 1024, // update payloads are tiny
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())

	notifyH := handler.NewNotifyHandler(bot.Notifier(), codes, links)
	healthH := handler.NewHealthHandler(bot.Notifier())

	app.Get("/", healthH.Status)
	app.Post("/send-update", notifyH.SendUpdate)
	app.Post("/generate-code", middleware.RateLimit(10, time.Minute), notifyH.GenerateCode)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Host + ":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("donutmacro bridge running on %s:%s (%s)", cfg.Host, cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	_ = sched.Shutdown()
	bot.Stop()
	log.Println("Server stopped")
}
