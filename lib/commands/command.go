package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fiffu/streamwatch/lib"
)

const (
	NameAddSub    = "addsub"
	NameExclude   = "exclude"
	NameClearSubs = "clearsubs"
	NameGetSubs   = "getsubs"
	NameHelp      = "help"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is one of AddSubscription, ClearSubscriptions, ListSubscriptions
// or Help.
type Command interface {
	isCommand()
}

type AddSubscription struct {
	Streamer string
	Game     string
	Exclude  bool
}

// ClearSubscriptions removes everything the caller owns when Streamer is
// empty, otherwise only that streamer's subscriptions.
type ClearSubscriptions struct {
	Streamer string
}

type ListSubscriptions struct{}

type Help struct{}

func (AddSubscription) isCommand()    {}
func (ClearSubscriptions) isCommand() {}
func (ListSubscriptions) isCommand()  {}
func (Help) isCommand()               {}

// Parse builds a command from structured options, as delivered by a slash
// command interaction.
func Parse(name, streamer, game string) (Command, error) {
	streamer = strings.TrimSpace(streamer)
	game = strings.TrimSpace(game)

	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/")) {
	case NameAddSub, NameExclude:
		if streamer == "" {
			return nil, fmt.Errorf("%w: streamer", lib.ErrMissingArgument)
		}
		if game == "" {
			return nil, fmt.Errorf("%w: game", lib.ErrMissingArgument)
		}
		exclude := strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(name), "/"), NameExclude)
		return AddSubscription{Streamer: streamer, Game: game, Exclude: exclude}, nil

	case NameClearSubs:
		return ClearSubscriptions{Streamer: streamer}, nil

	case NameGetSubs:
		return ListSubscriptions{}, nil

	case NameHelp:
		return Help{}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// ParseLine parses a chat line such as "/addsub ninja league of legends".
// Everything after the streamer is the game, so titles may contain spaces.
func ParseLine(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}

	var streamer, game string
	if len(fields) > 1 {
		streamer = fields[1]
	}
	if len(fields) > 2 {
		game = strings.Join(fields[2:], " ")
	}
	return Parse(fields[0], streamer, game)
}
