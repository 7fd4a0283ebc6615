package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asylumlabs/asylumbot/asylum"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Daily = discord.SlashCommandCreate{
	Name:        "daily",
	Description: "Claim your daily rewards.",
}

func DailyHandler(b *asylum.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		result, err := b.Daily.AttemptClaim(ctx, e.User().ID.String(), time.Now())
		if err != nil {
			slog.Error("Failed to claim daily reward",
				slog.String("type", "cmd"),
				slog.String("user_id", e.User().ID.String()),
				slog.Any("error", err),
			)
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "Error",
					Description: "Failed to claim your daily rewards. Please try again later.",
					Color:       ErrorColor,
				}},
			})
		}

		if !result.Claimed {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: fmt.Sprintf("⏳ You've already claimed your daily rewards.\nYou can claim again <t:%d:R>!",
						result.NextEligible.Unix()),
					Color: WarningColor,
				}},
			})
		}

		var description strings.Builder
		if result.StreakReset {
			description.WriteString("⚠️ You missed a day! Your streak has been reset.\n\n")
		}
		fmt.Fprintf(&description, "🪙・**Asylum Coins:** %d\n", result.Currency)
		fmt.Fprintf(&description, "📚・**XP:** %d\n", result.XP)
		fmt.Fprintf(&description, "🎟・**Trivia Passes:** %d\n\n", result.TriviaPasses)
		fmt.Fprintf(&description, "🔥・**Streak:** %d day(s)", result.Streak)

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "Daily Rewards Claimed!",
				Description: description.String(),
				Color:       SuccessColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Come back tomorrow, %s", e.User().Username),
				},
				Timestamp: &now,
			}},
		})
	}
}
