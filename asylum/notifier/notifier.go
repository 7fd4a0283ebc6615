package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// BirthdayNotifier posts birthday announcements to the configured channel,
// falling back to a DM when the channel is unset or rejects the message.
// The fallback is attempted once; after that the message is dropped.
type BirthdayNotifier struct {
	client    bot.Client
	channelID snowflake.ID
}

func NewBirthdayNotifier(client bot.Client, channelID snowflake.ID) *BirthdayNotifier {
	return &BirthdayNotifier{client: client, channelID: channelID}
}

func (n *BirthdayNotifier) Notify(ctx context.Context, userID string, message string) error {
	if n.channelID != 0 {
		_, err := n.client.Rest().CreateMessage(n.channelID,
			discord.NewMessageCreateBuilder().SetContent(message).Build(),
			rest.WithCtx(ctx))
		if err == nil {
			return nil
		}
		slog.Warn("Failed to post to birthday channel, trying DM",
			slog.String("channel_id", n.channelID.String()),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}

	userSnowflake, err := snowflake.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	dmChannel, err := n.client.Rest().CreateDMChannel(userSnowflake, rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to create DM channel: %w", err)
	}

	_, err = n.client.Rest().CreateMessage(dmChannel.ID(),
		discord.NewMessageCreateBuilder().SetContent(message).Build(),
		rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to deliver DM: %w", err)
	}
	return nil
}
