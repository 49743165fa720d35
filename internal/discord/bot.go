package discord

import (
	"fmt"
	"log"

	"github.com/PartyStarter240/donutmacro-discord-bot/internal/registry"

	"github.com/bwmarrin/discordgo"
)

// BotConfig carries the guild-side settings for the bot.
type BotConfig struct {
	GuildID     string
	CategoryID  string
	AdminRoleID string
}

// Bot manages the Discord session lifecycle, the update notifier and the
// /linkmc command.
type Bot struct {
	session  *discordgo.Session
	guildID  string
	notifier *Notifier
	commands *CommandHandler
}

// NewBot creates and configures the Discord bot. The session isn't opened
// until Start.
func NewBot(
	token string,
	cfg BotConfig,
	channels *registry.ChannelRegistry,
	codes *registry.CodeStore,
	links *registry.LinkRegistry,
) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	notifier := NewNotifier(s, cfg.GuildID, cfg.CategoryID, cfg.AdminRoleID, channels, links)
	commands := NewCommandHandler(s, codes, links, channels)

	bot := &Bot{
		session:  s,
		guildID:  cfg.GuildID,
		notifier: notifier,
		commands: commands,
	}

	s.AddHandler(bot.onReady)
	s.AddHandler(bot.onDisconnect)
	s.AddHandler(commands.Handle)

	return bot, nil
}

// Start opens the Discord gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	log.Println("[discord-bot] Bot connected to Discord")
	return nil
}

// Stop closes the Discord gateway connection.
func (b *Bot) Stop() {
	if b == nil || b.session == nil {
		return
	}
	_ = b.session.Close()
	log.Println("[discord-bot] Bot disconnected")
}

// Notifier returns the update dispatcher backed by this bot's session.
func (b *Bot) Notifier() *Notifier {
	return b.notifier
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.notifier.SetReady(s.State.User.ID)

	// Guild-scoped registration is live immediately, no global propagation wait.
	if _, err := s.ApplicationCommandCreate(s.State.User.ID, b.guildID, linkCommand); err != nil {
		log.Printf("[discord-bot] failed to register /%s: %v", linkCommandName, err)
		return
	}
	log.Printf("[discord-bot] Ready as %s, /%s registered in guild %s",
		s.State.User.Username, linkCommandName, b.guildID)
}

func (b *Bot) onDisconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	b.notifier.SetDisconnected()
	log.Println("[discord-bot] Gateway connection lost, waiting for reconnect")
}
