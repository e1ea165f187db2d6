package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fiffu/streamwatch/lib"
	"github.com/fiffu/streamwatch/lib/models"
	"go.uber.org/zap"
)

const (
	replyInvalidAdd     = "Unable to create subscription. Check command and try again"
	replyUnknownCommand = "Unknown command. Use /help for the list of commands"
)

var helpText = "List of commands:\n" +
	"```/" + NameAddSub + " <streamer> <game>\n" +
	"/" + NameExclude + " <streamer> <game>\n" +
	"/" + NameGetSubs + "\n" +
	"/" + NameClearSubs + " optional:<streamer>```"

type SubscriptionService interface {
	AddSubscription(ctx context.Context, subscriber, streamer, game string, exclude bool, dest models.Destination) (models.Subscription, error)
	RemoveSubscriptions(ctx context.Context, subscriber string) int
	RemoveStreamerSubscriptions(ctx context.Context, subscriber, streamer string) int
	ListSubscriptions(ctx context.Context, subscriber string) models.Subscriptions
}

// Caller identifies who issued a command and where their notifications go.
type Caller struct {
	Subscriber  string
	Destination models.Destination
}

type Handler struct {
	log *zap.Logger
	svc SubscriptionService
}

func NewHandler(log *zap.Logger, svc *lib.Service) *Handler {
	return &Handler{log, svc}
}

// Run parses line and executes it, always producing a reply.
func (h *Handler) Run(ctx context.Context, caller Caller, line string) string {
	cmd, err := ParseLine(line)
	if err != nil {
		return h.ReplyError(err)
	}
	return h.Execute(ctx, caller, cmd)
}

func (h *Handler) Execute(ctx context.Context, caller Caller, cmd Command) string {
	switch cmd := cmd.(type) {
	case AddSubscription:
		sub, err := h.svc.AddSubscription(ctx, caller.Subscriber, cmd.Streamer, cmd.Game, cmd.Exclude, caller.Destination)
		if err != nil {
			return h.ReplyError(err)
		}
		if sub.Exclude {
			return fmt.Sprintf("Subscription created for %s playing anything except %s", sub.Streamer, sub.Game)
		}
		return fmt.Sprintf("Subscription created for %s playing %s", sub.Streamer, sub.Game)

	case ClearSubscriptions:
		if cmd.Streamer == "" {
			h.svc.RemoveSubscriptions(ctx, caller.Subscriber)
			return "All Subscriptions removed"
		}
		h.svc.RemoveStreamerSubscriptions(ctx, caller.Subscriber, cmd.Streamer)
		return "Subscriptions removed for " + models.Canonical(cmd.Streamer)

	case ListSubscriptions:
		return formatList(caller.Subscriber, h.svc.ListSubscriptions(ctx, caller.Subscriber))

	case Help:
		return helpText

	default:
		return replyUnknownCommand
	}
}

// ReplyError maps a parse or service error to the text shown to the caller.
func (h *Handler) ReplyError(err error) string {
	h.log.Sugar().Debugw("Rejected command", "err", err)
	switch {
	case errors.Is(err, lib.ErrMissingArgument):
		return replyInvalidAdd
	case errors.Is(err, ErrUnknownCommand):
		return replyUnknownCommand
	default:
		h.log.Sugar().Errorw("Command failed", "err", err)
		return "Something went wrong, please try again"
	}
}

func formatList(subscriber string, subs models.Subscriptions) string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "List of Subscriptions for <@%s>:\n", subscriber)
	for _, sub := range subs {
		fmt.Fprintf(b, "%s: %s\n", sub.Streamer, sub.Game)
	}
	return b.String()
}
