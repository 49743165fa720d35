package discord

import (
	"fmt"
	"log"

	"github.com/PartyStarter240/donutmacro-discord-bot/internal/registry"

	"github.com/bwmarrin/discordgo"
)

const linkCommandName = "linkmc"

var linkCommand = &discordgo.ApplicationCommand{
	Name:        linkCommandName,
	Description: "Link your Discord account to your Minecraft player using a code from the game",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "code",
			Description: "The verification code shown in-game",
			Required:    true,
		},
	},
}

// CommandHandler processes the /linkmc slash command.
type CommandHandler struct {
	api      ChannelAPI
	codes    *registry.CodeStore
	links    *registry.LinkRegistry
	channels *registry.ChannelRegistry
}

func NewCommandHandler(
	api ChannelAPI,
	codes *registry.CodeStore,
	links *registry.LinkRegistry,
	channels *registry.ChannelRegistry,
) *CommandHandler {
	return &CommandHandler{
		api:      api,
		codes:    codes,
		links:    links,
		channels: channels,
	}
}

// Handle dispatches an interaction. Replies are always ephemeral so codes
// and player identifiers don't leak into shared channels.
func (h *CommandHandler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != linkCommandName {
		return
	}

	var code string
	for _, opt := range data.Options {
		if opt.Name == "code" {
			code = opt.StringValue()
		}
	}

	reply := h.linkAccount(code, interactionUserID(i))

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("[linkmc] failed to respond to interaction: %v", err)
	}
}

// linkAccount redeems the code and records the link. If the player's channel
// already exists the user is granted access to it; a failed grant is logged
// but never rolls the link back.
func (h *CommandHandler) linkAccount(code, userID string) string {
	uuid, ok := h.codes.Redeem(code)
	if !ok {
		return "That code is invalid or has expired. Generate a new one in-game and try again."
	}

	h.links.Link(uuid, userID)
	log.Printf("[linkmc] linked player %s to Discord user %s", shortUUID(uuid), userID)

	if channelID, ok := h.channels.Get(uuid); ok {
		err := h.api.ChannelPermissionSet(channelID, userID,
			discordgo.PermissionOverwriteTypeMember, memberPermissions, 0)
		if err != nil {
			log.Printf("[linkmc] failed to grant %s access to channel %s: %v", userID, channelID, err)
		}
	}

	return fmt.Sprintf("Linked! Your Discord account now receives updates for player `%s`.", shortUUID(uuid))
}

// interactionUserID works for both guild and DM invocations.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
