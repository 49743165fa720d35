package discord

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/PartyStarter240/donutmacro-discord-bot/internal/registry"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/singleflight"
)

// ErrNotReady is returned while the Discord session has not finished (or has
// lost) its gateway handshake. Callers should retry later.
var ErrNotReady = errors.New("discord session not ready")

// Permissions granted to humans in a player channel (the linked account and
// the optional admin role).
const memberPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// Permissions the bot keeps for itself so it can manage and post in the
// channels it creates.
const botPermissions = memberPermissions |
	discordgo.PermissionManageChannels |
	discordgo.PermissionManageMessages |
	discordgo.PermissionEmbedLinks

// ChannelAPI is the slice of the Discord session the notifier needs.
// *discordgo.Session satisfies it.
type ChannelAPI interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, options ...discordgo.RequestOption) error
}

// UpdateResult reports where an update landed.
type UpdateResult struct {
	ChannelID   string
	ChannelName string
}

// Notifier delivers player updates into per-player private channels,
// creating each channel on first contact.
type Notifier struct {
	api         ChannelAPI
	guildID     string
	categoryID  string
	adminRoleID string

	channels *registry.ChannelRegistry
	links    *registry.LinkRegistry

	// Coalesces concurrent first-update requests for the same player so a
	// burst cannot create duplicate channels.
	creating singleflight.Group

	mu     sync.RWMutex
	ready  bool
	selfID string
}

func NewNotifier(
	api ChannelAPI,
	guildID, categoryID, adminRoleID string,
	channels *registry.ChannelRegistry,
	links *registry.LinkRegistry,
) *Notifier {
	return &Notifier{
		api:         api,
		guildID:     guildID,
		categoryID:  categoryID,
		adminRoleID: adminRoleID,
		channels:    channels,
		links:       links,
	}
}

// SetReady marks the session usable and records the bot's own user ID, which
// the permission overwrites need.
func (n *Notifier) SetReady(selfID string) {
	n.mu.Lock()
	n.ready = true
	n.selfID = selfID
	n.mu.Unlock()
}

// SetDisconnected marks the session unusable until the next ready event.
func (n *Notifier) SetDisconnected() {
	n.mu.Lock()
	n.ready = false
	n.mu.Unlock()
}

// Ready reports whether the gateway session is established.
func (n *Notifier) Ready() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ready
}

func (n *Notifier) self() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.selfID
}

// SendUpdate posts a message to the player's private channel, creating the
// channel first if this player has never been seen. No retries: a platform
// failure is returned to the caller as-is.
func (n *Notifier) SendUpdate(uuid, message string) (*UpdateResult, error) {
	if !n.Ready() {
		return nil, ErrNotReady
	}
	if _, err := n.api.Guild(n.guildID); err != nil {
		return nil, fmt.Errorf("resolve guild %s: %w", n.guildID, err)
	}

	ch, err := n.getOrCreateChannel(uuid)
	if err != nil {
		return nil, err
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Player update",
		Description: message,
		Color:       0x2ECC71,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Player " + shortUUID(uuid)},
	}
	if _, err := n.api.ChannelMessageSendEmbed(ch.ID, embed); err != nil {
		return nil, fmt.Errorf("send update to channel %s: %w", ch.ID, err)
	}

	return &UpdateResult{ChannelID: ch.ID, ChannelName: ch.Name}, nil
}

func (n *Notifier) getOrCreateChannel(uuid string) (*discordgo.Channel, error) {
	if id, ok := n.channels.Get(uuid); ok {
		ch, err := n.api.Channel(id)
		if err == nil {
			return ch, nil
		}
		// The channel was deleted on the Discord side; recreate and
		// re-register rather than failing the update.
		log.Printf("[notify] channel %s for player %s is gone, recreating: %v", id, shortUUID(uuid), err)
	}

	v, err, _ := n.creating.Do(uuid, func() (interface{}, error) {
		return n.createChannel(uuid)
	})
	if err != nil {
		return nil, err
	}
	return v.(*discordgo.Channel), nil
}

// createChannel provisions the private channel for a player and records it.
// @everyone is denied, the bot and the optional admin role are allowed, and
// if the player already linked a Discord account that account is allowed too.
func (n *Notifier) createChannel(uuid string) (*discordgo.Channel, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   n.guildID, // @everyone
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    n.self(),
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: botPermissions,
		},
	}
	if n.adminRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    n.adminRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberPermissions,
		})
	}
	if userID, ok := n.links.Get(uuid); ok {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    userID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: memberPermissions,
		})
	}

	short := shortUUID(uuid)
	ch, err := n.api.GuildChannelCreateComplex(n.guildID, discordgo.GuildChannelCreateData{
		Name:                 "player-" + sanitizeChannelName(short),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                "Update feed for player " + short,
		ParentID:             n.categoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("create channel for player %s: %w", short, err)
	}

	n.channels.Put(uuid, ch.ID)
	log.Printf("[notify] created channel #%s (%s) for player %s", ch.Name, ch.ID, short)
	return ch, nil
}

// shortUUID truncates a player UUID for channel names and user-facing text;
// the full identifier is never shown on the Discord side.
func shortUUID(uuid string) string {
	if len(uuid) > 8 {
		uuid = uuid[:8]
	}
	return sanitizeChannelName(uuid)
}

func sanitizeChannelName(name string) string {
	result := make([]byte, 0, len(name))
	for _, c := range []byte(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			result = append(result, c)
		} else if c >= 'A' && c <= 'Z' {
			result = append(result, c+32) // toLower
		} else {
			result = append(result, '-')
		}
	}
	return string(result)
}
