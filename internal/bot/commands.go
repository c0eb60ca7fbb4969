package bot

import (
	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
	"github.com/Proton-105/econ-bot/internal/domain"
)

// OptionType is the kind of a command argument.
type OptionType int

const (
	OptionString OptionType = iota
	OptionInteger
	OptionUser
	OptionChannel
)

// Option describes one positional argument. User options become event
// mentions; every other option becomes the next positional Arg.
type Option struct {
	Name        string
	Description string
	Type        OptionType
	Required    bool
	Choices     []string
}

// Command describes a command for routing, channel binding and slash registration.
type Command struct {
	Name        string
	Aliases     []string
	Description string
	// Channel binds the command to a guild channel kind; empty is unrestricted.
	Channel domain.ChannelKind
	Admin   bool
	Options []Option
}

var (
	amountOpt = Option{Name: "amount", Description: "Amount or \"all\"", Type: OptionString, Required: true}
	betOpt    = Option{Name: "bet", Description: "Stake or \"all\"", Type: OptionString, Required: true}
	userOpt   = Option{Name: "user", Description: "Target user", Type: OptionUser, Required: true}
)

// Commands is the full command table.
var Commands = []Command{
	{Name: "balance", Aliases: []string{"bal", "profile"}, Description: "Show a wallet and bank balance", Channel: domain.ChannelEconomy,
		Options: []Option{{Name: "user", Description: "Whose balance", Type: OptionUser}}},
	{Name: "deposit", Aliases: []string{"dep"}, Description: "Move coins into the bank", Channel: domain.ChannelEconomy, Options: []Option{amountOpt}},
	{Name: "withdraw", Aliases: []string{"with"}, Description: "Move coins out of the bank", Channel: domain.ChannelEconomy, Options: []Option{amountOpt}},
	{Name: "transfer", Aliases: []string{"pay", "give"}, Description: "Send coins to a user", Channel: domain.ChannelEconomy, Options: []Option{userOpt, amountOpt}},
	{Name: "tip", Description: "Tip a user", Channel: domain.ChannelEconomy, Options: []Option{userOpt, amountOpt}},
	{Name: "rob", Aliases: []string{"steal"}, Description: "Try to rob a user", Channel: domain.ChannelEconomy, Options: []Option{userOpt}},
	{Name: "crime", Description: "Commit a crime", Channel: domain.ChannelEconomy},
	{Name: "coinflip", Aliases: []string{"cf"}, Description: "Bet on a coin flip", Channel: domain.ChannelGames,
		Options: []Option{{Name: "side", Description: "heads or tails", Type: OptionString, Required: true, Choices: []string{"heads", "tails"}}, betOpt}},
	{Name: "dice", Description: "Guess the die roll", Channel: domain.ChannelGames,
		Options: []Option{{Name: "guess", Description: "1 to 6", Type: OptionInteger, Required: true}, betOpt}},
	{Name: "rps", Description: "Rock, paper, scissors", Channel: domain.ChannelGames,
		Options: []Option{{Name: "choice", Description: "Your hand", Type: OptionString, Required: true, Choices: []string{"rock", "paper", "scissors"}}, betOpt}},
	{Name: "slots", Aliases: []string{"slot"}, Description: "Spin the slot machine", Channel: domain.ChannelGames, Options: []Option{betOpt}},
	{Name: "blackjack", Aliases: []string{"bj"}, Description: "Play blackjack against the dealer", Channel: domain.ChannelGames, Options: []Option{betOpt}},
	{Name: "marry", Aliases: []string{"propose"}, Description: "Propose to a user", Channel: domain.ChannelEconomy, Options: []Option{userOpt}},
	{Name: "divorce", Description: "End your marriage", Channel: domain.ChannelEconomy},
	{Name: "khula", Description: "Ask your partner for a khula", Channel: domain.ChannelEconomy},
	{Name: "loan", Description: "Show or take a loan", Channel: domain.ChannelEconomy,
		Options: []Option{{Name: "amount", Description: "Principal", Type: OptionInteger}}},
	{Name: "repay", Description: "Repay your loan", Channel: domain.ChannelEconomy, Options: []Option{amountOpt}},
	{Name: "job", Aliases: []string{"jobs", "work"}, Description: "List jobs or take one", Channel: domain.ChannelEconomy,
		Options: []Option{{Name: "name", Description: "Job name", Type: OptionString}}},
	{Name: "resign", Aliases: []string{"quit"}, Description: "Quit your job", Channel: domain.ChannelEconomy},
	{Name: "salary", Description: "Collect your salary", Channel: domain.ChannelEconomy},
	{Name: "daily", Description: "Collect the daily gift", Channel: domain.ChannelEconomy},
	{Name: "shop", Aliases: []string{"store"}, Description: "Browse the shop", Channel: domain.ChannelEconomy},
	{Name: "buy", Description: "Buy an item", Channel: domain.ChannelEconomy,
		Options: []Option{{Name: "item", Description: "Item id or name", Type: OptionString, Required: true}}},
	{Name: "protection", Aliases: []string{"protect"}, Description: "Buy robbery protection", Channel: domain.ChannelEconomy},
	{Name: "inventory", Aliases: []string{"inv"}, Description: "Show your items", Channel: domain.ChannelEconomy},
	{Name: "leaderboard", Aliases: []string{"lb", "top"}, Description: "Richest members", Channel: domain.ChannelEconomy},
	{Name: "setup", Description: "Bind a channel (admin)", Admin: true,
		Options: []Option{
			{Name: "kind", Description: "Channel kind", Type: OptionString, Required: true, Choices: []string{"economy", "games", "log"}},
			{Name: "channel", Description: "Channel to bind", Type: OptionChannel},
		}},
	{Name: "help", Description: "Command help",
		Options: []Option{{Name: "topic", Description: "Help topic", Type: OptionString, Choices: keyboard.HelpTopics}}},
}

// callbackChannels binds button actions like their originating commands.
var callbackChannels = map[string]domain.ChannelKind{
	keyboard.ActionBlackjackHit:   domain.ChannelGames,
	keyboard.ActionBlackjackStand: domain.ChannelGames,
	keyboard.ActionMarryAccept:    domain.ChannelEconomy,
	keyboard.ActionMarryReject:    domain.ChannelEconomy,
	keyboard.ActionKhulaAccept:    domain.ChannelEconomy,
	keyboard.ActionKhulaReject:    domain.ChannelEconomy,
	keyboard.ActionLeaderboard:    domain.ChannelEconomy,
}

// ChannelKinds maps every routed name to the channel kind it is bound to.
func ChannelKinds() map[string]domain.ChannelKind {
	kinds := make(map[string]domain.ChannelKind, len(Commands)+len(callbackChannels))
	for _, cmd := range Commands {
		if cmd.Channel != "" {
			kinds[cmd.Name] = cmd.Channel
		}
	}
	for action, kind := range callbackChannels {
		kinds[action] = kind
	}
	return kinds
}
