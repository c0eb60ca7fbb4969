package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/Proton-105/econ-bot/internal/bot"
)

var optionTypes = map[bot.OptionType]discordgo.ApplicationCommandOptionType{
	bot.OptionString:  discordgo.ApplicationCommandOptionString,
	bot.OptionInteger: discordgo.ApplicationCommandOptionInteger,
	bot.OptionUser:    discordgo.ApplicationCommandOptionUser,
	bot.OptionChannel: discordgo.ApplicationCommandOptionChannel,
}

// adminPermission is required to see and run admin commands.
var adminPermission int64 = discordgo.PermissionManageGuild

// ApplicationCommands converts the command table into slash command
// definitions. Aliases exist only for prefix messages and only help is
// offered in direct messages.
func ApplicationCommands(cmds []bot.Command) []*discordgo.ApplicationCommand {
	return lo.Map(cmds, func(cmd bot.Command, _ int) *discordgo.ApplicationCommand {
		dmAllowed := cmd.Name == "help"
		ac := &discordgo.ApplicationCommand{
			Name:         cmd.Name,
			Description:  cmd.Description,
			DMPermission: &dmAllowed,
		}
		if cmd.Admin {
			ac.DefaultMemberPermissions = &adminPermission
		}

		for _, opt := range cmd.Options {
			ac.Options = append(ac.Options, &discordgo.ApplicationCommandOption{
				Type:        optionTypes[opt.Type],
				Name:        opt.Name,
				Description: opt.Description,
				Required:    opt.Required,
				Choices: lo.Map(opt.Choices, func(c string, _ int) *discordgo.ApplicationCommandOptionChoice {
					return &discordgo.ApplicationCommandOptionChoice{Name: c, Value: c}
				}),
			})
		}
		return ac
	})
}
