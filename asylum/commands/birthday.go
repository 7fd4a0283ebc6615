package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asylumlabs/asylumbot/asylum"
	"github.com/asylumlabs/asylumbot/asylum/birthday"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

var Birthday = discord.SlashCommandCreate{
	Name:        "birthday",
	Description: "Set your birthday!",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "date",
			Description: "Your birthday in YYYY-MM-DD format",
			Required:    true,
		},
	},
}

func BirthdayHandler(b *asylum.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		date := e.SlashCommandInteractionData().String("date")
		userID := e.User().ID.String()

		anniversary, err := birthday.NewAnniversary(userID, date)
		if err != nil {
			if errors.Is(err, birthday.ErrInvalidDate) {
				return e.CreateMessage(discord.MessageCreate{
					Embeds: []discord.Embed{{
						Description: "⚠️ Invalid date format! Please use YYYY-MM-DD.",
						Color:       WarningColor,
					}},
				})
			}
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		inserted, err := b.AnniversaryRepository.SetIfAbsent(ctx, anniversary)
		if err != nil {
			slog.Error("Failed to set birthday",
				slog.String("type", "cmd"),
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       "Error",
					Description: "Failed to save your birthday. Please try again later.",
					Color:       ErrorColor,
				}},
			})
		}

		if !inserted {
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Description: fmt.Sprintf("⚠️ %s, your birthday has already been set and cannot be changed.",
						e.User().Username),
					Color: WarningColor,
				}},
			})
		}

		message := fmt.Sprintf("%s, your birthday has been set to **%s**!", e.User().Username, date)
		if birthday.MatchesToday(anniversary, time.Now()) {
			message = fmt.Sprintf("🎂 Happy Birthday, %s! 🎉\nTill next year~", e.User().Username)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Description: message,
				Color:       SuccessColor,
			}},
		})
	}
}
