package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/bot"
	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
)

func TestParseMessage(t *testing.T) {
	alice := &discordgo.User{ID: "111", Username: "alice"}
	botUser := &discordgo.User{ID: "222", Username: "dealer", Bot: true}

	tests := []struct {
		name     string
		text     string
		mentions []*discordgo.User
		ok       bool
		want     parsedMessage
	}{
		{name: "not a command", text: "hello there"},
		{name: "bare prefix", text: "!  "},
		{name: "plain", text: "!BAL", ok: true, want: parsedMessage{name: "bal"}},
		{
			name: "mention before amount", text: "!pay <@111> 500", mentions: []*discordgo.User{alice}, ok: true,
			want: parsedMessage{name: "pay", args: []string{"500"}, mentions: []handlers.User{{ID: "111", Name: "alice"}}},
		},
		{
			name: "nickname mention and bot flag", text: "!rob <@!222>", mentions: []*discordgo.User{botUser}, ok: true,
			want: parsedMessage{name: "rob", mentions: []handlers.User{{ID: "222", Name: "dealer", Bot: true}}},
		},
		{
			name: "channel mention stays an arg", text: "!setup games <#999>", ok: true,
			want: parsedMessage{name: "setup", args: []string{"games", "<#999>"}},
		},
		{
			name: "role mention stays an arg", text: "!tip <@&5> 10", ok: true,
			want: parsedMessage{name: "tip", args: []string{"<@&5>", "10"}},
		},
		{
			name: "unknown mention", text: "!marry <@333>", ok: true,
			want: parsedMessage{name: "marry", mentions: []handlers.User{{ID: "333"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMessage("!", tt.text, tt.mentions)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestComponents(t *testing.T) {
	markup := keyboard.Markup{
		{
			{Text: "Hit", Data: "bj:hit:1", Style: keyboard.StylePrimary},
			{Text: "Stand", Data: "bj:stand:1", Style: keyboard.StyleDanger, Disabled: true},
		},
		{},
	}

	rows := components(markup, false)
	require.Len(t, rows, 1)
	row, ok := rows[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)

	stand := row.Components[1].(discordgo.Button)
	assert.Equal(t, "bj:stand:1", stand.CustomID)
	assert.Equal(t, discordgo.DangerButton, stand.Style)
	assert.True(t, stand.Disabled)

	assert.Nil(t, components(nil, false))
	assert.NotNil(t, components(nil, true))
	assert.Empty(t, components(nil, true))
}

func TestEmbedsAndContent(t *testing.T) {
	plain := handlers.Response{Text: "hi"}
	assert.Nil(t, embeds(plain))
	assert.Equal(t, "hi", content(plain))

	rich := handlers.Response{
		Title:  "Balance",
		Text:   "alice",
		Color:  handlers.ColorInfo,
		Fields: []handlers.Field{{Name: "Wallet", Value: "10", Inline: true}, {Name: "Bank", Value: ""}},
	}
	got := embeds(rich)
	require.Len(t, got, 1)
	assert.Equal(t, "Balance", got[0].Title)
	assert.Equal(t, "alice", got[0].Description)
	assert.Equal(t, handlers.ColorInfo, got[0].Color)
	require.Len(t, got[0].Fields, 2)
	assert.NotEmpty(t, got[0].Fields[1].Value)
	assert.Empty(t, content(rich))
}

func TestResponseData(t *testing.T) {
	data := responseData(handlers.Response{Text: "nope", Ephemeral: true})
	assert.Equal(t, discordgo.MessageFlagsEphemeral, data.Flags)

	data = responseData(handlers.Response{Text: "done", Edit: true})
	assert.NotNil(t, data.Components)
	assert.Empty(t, data.Components)
}

func TestApplicationCommands(t *testing.T) {
	cmds := ApplicationCommands(bot.Commands)
	require.Len(t, cmds, len(bot.Commands))

	byName := make(map[string]*discordgo.ApplicationCommand, len(cmds))
	for _, c := range cmds {
		byName[c.Name] = c
		assert.NotEmpty(t, c.Description, c.Name)
	}

	transfer := byName["transfer"]
	require.Len(t, transfer.Options, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionUser, transfer.Options[0].Type)
	assert.True(t, transfer.Options[0].Required)

	setup := byName["setup"]
	require.NotNil(t, setup.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionManageGuild), *setup.DefaultMemberPermissions)
	assert.Equal(t, discordgo.ApplicationCommandOptionChannel, setup.Options[1].Type)
	assert.Len(t, setup.Options[0].Choices, 3)

	assert.True(t, *byName["help"].DMPermission)
	assert.False(t, *byName["balance"].DMPermission)
	assert.Nil(t, byName["balance"].DefaultMemberPermissions)
}

func TestCommandOptions(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Name: "transfer",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "111"},
			{Name: "amount", Type: discordgo.ApplicationCommandOptionString, Value: "all"},
			{Name: "guess", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(4)},
			{Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "999"},
		},
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Users: map[string]*discordgo.User{"111": {ID: "111", Username: "alice"}},
		},
	}

	args, mentions := commandOptions(data)
	assert.Equal(t, []string{"all", "4", "<#999>"}, args)
	assert.Equal(t, []handlers.User{{ID: "111", Name: "alice"}}, mentions)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "en", locale(discordgo.EnglishUS))
	assert.Equal(t, "ru", locale(discordgo.Russian))
	assert.Equal(t, "", locale(""))

	assert.True(t, hasAdmin(discordgo.PermissionAdministrator))
	assert.True(t, hasAdmin(discordgo.PermissionManageGuild|discordgo.PermissionSendMessages))
	assert.False(t, hasAdmin(discordgo.PermissionSendMessages))

	assert.Equal(t, handlers.User{ID: "1", Name: "Global", Bot: false}, toUser(&discordgo.User{ID: "1", Username: "u", GlobalName: "Global"}))
}
