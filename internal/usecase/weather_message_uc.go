package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/domain/ports/adapter"
	"notion-reminder-service/internal/domain/ports/repository"
)

// Compile-time check
var _ WeatherMessageUseCase = (*weatherMessageUC)(nil)

type WeatherMessageUseCase interface {
	// SendRainfallSummary pushes the tiered last-hour summary to the chat.
	SendRainfallSummary(ctx context.Context, chatID int64) error
	// SendForecast pushes an AI-condensed two-hour forecast to the chat.
	SendForecast(ctx context.Context, chatID int64) error
}

type weatherMessageUC struct {
	rainfall    RainfallUseCase
	provider    adapter.WeatherProvider
	intensity   repository.IntensitySettingsRepository
	summarizer  adapter.Summarizer
	bot         adapter.TelegramBotAdapter
	defaultChat int64
	log         *zerolog.Logger
}

func NewWeatherMessageUseCase(
	rainfall RainfallUseCase,
	provider adapter.WeatherProvider,
	intensity repository.IntensitySettingsRepository,
	summarizer adapter.Summarizer,
	bot adapter.TelegramBotAdapter,
	defaultChat int64,
	logger *zerolog.Logger,
) *weatherMessageUC {
	l := logger.With().Str("component", "WeatherMessageUC").Logger()
	return &weatherMessageUC{
		rainfall:    rainfall,
		provider:    provider,
		intensity:   intensity,
		summarizer:  summarizer,
		bot:         bot,
		defaultChat: defaultChat,
		log:         &l,
	}
}

func (u *weatherMessageUC) SendRainfallSummary(ctx context.Context, chatID int64) error {
	summary, err := u.rainfall.LastHourSummary(ctx)
	if err != nil {
		return err
	}
	settings, err := u.intensity.Get(ctx, repository.NoTX)
	if err != nil {
		if err == domain.ErrNotFound {
			return domain.ErrIntensitySettingsMissing
		}
		return fmt.Errorf("fetch intensity settings: %w", err)
	}

	text := FormatRainfallSummary(summary, settings)
	return u.bot.SendHTML(ctx, u.chat(chatID), text)
}

func (u *weatherMessageUC) SendForecast(ctx context.Context, chatID int64) error {
	window, err := u.provider.FetchTwoHourForecast(ctx)
	if err != nil {
		return fmt.Errorf("fetch forecast: %w", err)
	}

	summary, err := u.summarizer.Summarize(ctx, forecastPrompt(window))
	if err != nil {
		return fmt.Errorf("summarize forecast: %w", err)
	}

	text := fmt.Sprintf(
		"%s\n\n<i>Powered by Gemini using real time data from <a href=\"https://data.gov.sg\">data.gov.sg</a></i>\nForecast for → %s",
		summary, window.ValidText,
	)
	return u.bot.SendHTML(ctx, u.chat(chatID), text)
}

func (u *weatherMessageUC) chat(chatID int64) int64 {
	if chatID != 0 {
		return chatID
	}
	return u.defaultChat
}

// FormatRainfallSummary renders the tier lists as a Telegram HTML message.
func FormatRainfallSummary(s *model.RainfallSummary, settings *model.IntensitySettings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Rainfall Summary for the Last Hour (Since %d:00):</b>\n", s.Hour)
	fmt.Fprintf(&b, "Light: &lt;= %.1fmm/hr, Moderate: %.1fmm/hr - %.1fmm/hr, Heavy: &gt; %.1fmm/hr\n",
		settings.LowerBound, settings.LowerBound, settings.UpperBound, settings.UpperBound)
	fmt.Fprintf(&b, "\nNo Rain(%d): %s\n", len(s.None), strings.Join(s.None, ", "))
	fmt.Fprintf(&b, "\nLight Rain(%d): %s\n", len(s.Light), strings.Join(s.Light, ", "))
	fmt.Fprintf(&b, "\nModerate Rain(%d): %s\n", len(s.Moderate), strings.Join(s.Moderate, ", "))
	fmt.Fprintf(&b, "\nHeavy Rain(%d): %s", len(s.Heavy), strings.Join(s.Heavy, ", "))
	return b.String()
}

// forecastPrompt builds the weatherman prompt from the area forecasts.
func forecastPrompt(w *model.ForecastWindow) string {
	var b strings.Builder
	b.WriteString("Summarise this weather forecast in 60 words like a weatherman with some creativity. ")
	b.WriteString("List locations with rainy conditions if any. ")
	b.WriteString("If majority of locations are rainy, then list only those dry locations: \n{ data: [")
	for _, f := range w.Forecasts {
		fmt.Fprintf(&b, "{%s : %s},", f.Area, f.Forecast)
	}
	b.WriteString("]}")
	return b.String()
}
