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
	"github.com/disgoorg/paginator"
)

const streaksPerPage = 10

var Streaks = discord.SlashCommandCreate{
	Name:        "streaks",
	Description: "See who has kept their daily streak going the longest.",
}

func StreaksHandler(b *asylum.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		records, err := b.RewardRepository.GetTopStreaks(ctx, 100)
		if err != nil {
			slog.Error("Failed to load streak leaderboard",
				slog.String("type", "cmd"),
				slog.Any("error", err),
			)
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "Error",
					Description: "Failed to load the streak leaderboard. Please try again later.",
					Color:       ErrorColor,
				}},
			})
		}

		if len(records) == 0 {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: "Nobody has an active streak yet. Be the first with `/daily`!",
					Color:       InfoColor,
				}},
			})
		}

		totalPages := (len(records) + streaksPerPage - 1) / streaksPerPage

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * streaksPerPage
				endIdx := min(startIdx+streaksPerPage, len(records))

				var description strings.Builder
				for i, record := range records[startIdx:endIdx] {
					description.WriteString(fmt.Sprintf("%d. <@%s>・🔥 %d day(s)・🪙 %d\n",
						startIdx+i+1,
						record.UserID,
						record.Streak,
						record.Currency,
					))
				}

				embed.
					SetTitle("🔥 Daily Streak Leaderboard").
					SetDescription(description.String()).
					SetColor(InfoColor).
					SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
