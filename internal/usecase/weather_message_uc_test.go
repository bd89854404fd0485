//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/usecase"
)

type messageFixture struct {
	rainfall   *rainfallFixture
	provider   *MockWeatherProvider
	summarizer *MockSummarizer
	bot        *MockTelegramBot
	uc         usecase.WeatherMessageUseCase
}

func newMessageFixture(t *testing.T, at time.Time) *messageFixture {
	t.Helper()
	rf := newRainfallFixture(t, at)
	f := &messageFixture{
		rainfall:   rf,
		provider:   rf.provider,
		summarizer: &MockSummarizer{Reply: "Clear skies over most of the island."},
		bot:        &MockTelegramBot{},
	}
	f.uc = usecase.NewWeatherMessageUseCase(
		rf.uc, rf.provider, rf.intensity, f.summarizer, f.bot,
		4242, testLogger(),
	)
	return f
}

func seedHour(t *testing.T, f *rainfallFixture, hour int) {
	t.Helper()
	ctx := context.Background()
	day := &model.RainfallDay{ID: "day-1", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, sgt), SlotsPerHour: model.SlotsPerHour}
	if err := f.days.Create(ctx, nil, day); err != nil {
		t.Fatal(err)
	}
	if err := f.stations.UpsertAll(ctx, nil, []*model.RainfallStation{
		{ID: "A", Name: "Ang Mo Kio"},
		{ID: "B", Name: "Bedok"},
	}); err != nil {
		t.Fatal(err)
	}
	seed := []*model.RainfallSlot{
		{ID: "a1", DayID: "day-1", StationID: "A", HourOfDay: hour, SlotNumber: 1, RainfallAmount: 0},
		{ID: "b1", DayID: "day-1", StationID: "B", HourOfDay: hour, SlotNumber: 2, RainfallAmount: 9.0},
	}
	if err := f.slots.UpsertAll(ctx, nil, seed); err != nil {
		t.Fatal(err)
	}
}

func TestSendRainfallSummary(t *testing.T) {
	at := time.Date(2024, 5, 1, 20, 45, 0, 0, sgt)

	t.Run("delivers tiered message to default chat", func(t *testing.T) {
		f := newMessageFixture(t, at)
		seedHour(t, f.rainfall, 20)

		if err := f.uc.SendRainfallSummary(context.Background(), 0); err != nil {
			t.Fatalf("SendRainfallSummary returned error: %v", err)
		}
		if len(f.bot.Sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(f.bot.Sent))
		}
		msg := f.bot.Sent[0]
		if msg.ChatID != 4242 {
			t.Fatalf("chat ID = %d, want the default chat 4242", msg.ChatID)
		}
		for _, want := range []string{
			"Rainfall Summary for the Last Hour (Since 20:00)",
			"No Rain(1): Ang Mo Kio",
			"Heavy Rain(1): Bedok",
			"Light Rain(0):",
			"Moderate Rain(0):",
		} {
			if !strings.Contains(msg.Text, want) {
				t.Fatalf("message missing %q:\n%s", want, msg.Text)
			}
		}
	})

	t.Run("explicit chat overrides default", func(t *testing.T) {
		f := newMessageFixture(t, at)
		seedHour(t, f.rainfall, 20)

		if err := f.uc.SendRainfallSummary(context.Background(), 77); err != nil {
			t.Fatalf("SendRainfallSummary returned error: %v", err)
		}
		if f.bot.Sent[0].ChatID != 77 {
			t.Fatalf("chat ID = %d, want 77", f.bot.Sent[0].ChatID)
		}
	})

	t.Run("no data sends nothing", func(t *testing.T) {
		f := newMessageFixture(t, at)
		err := f.uc.SendRainfallSummary(context.Background(), 0)
		if !errors.Is(err, domain.ErrNoSlotsForHour) {
			t.Fatalf("err = %v, want ErrNoSlotsForHour", err)
		}
		if len(f.bot.Sent) != 0 {
			t.Fatalf("sent %d messages on an empty hour, want 0", len(f.bot.Sent))
		}
	})
}

func TestSendForecast(t *testing.T) {
	at := time.Date(2024, 5, 1, 20, 45, 0, 0, sgt)

	t.Run("summarizes areas and delivers", func(t *testing.T) {
		f := newMessageFixture(t, at)
		f.provider.Forecast = &model.ForecastWindow{
			ValidText: "8.30pm to 10.30pm",
			Forecasts: []model.AreaForecast{
				{Area: "Bedok", Forecast: "Light Rain"},
				{Area: "Clementi", Forecast: "Cloudy"},
			},
		}

		if err := f.uc.SendForecast(context.Background(), 0); err != nil {
			t.Fatalf("SendForecast returned error: %v", err)
		}
		if len(f.summarizer.Prompts) != 1 {
			t.Fatalf("summarizer called %d times, want 1", len(f.summarizer.Prompts))
		}
		prompt := f.summarizer.Prompts[0]
		if !strings.Contains(prompt, "{Bedok : Light Rain}") || !strings.Contains(prompt, "{Clementi : Cloudy}") {
			t.Fatalf("prompt missing area data:\n%s", prompt)
		}
		if len(f.bot.Sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(f.bot.Sent))
		}
		msg := f.bot.Sent[0].Text
		if !strings.Contains(msg, "Clear skies over most of the island.") {
			t.Fatalf("message missing the AI summary:\n%s", msg)
		}
		if !strings.Contains(msg, "8.30pm to 10.30pm") || !strings.Contains(msg, "data.gov.sg") {
			t.Fatalf("message missing the validity footer:\n%s", msg)
		}
	})

	t.Run("provider failure stops delivery", func(t *testing.T) {
		f := newMessageFixture(t, at)
		f.provider.ForecastErr = errors.New("upstream 502")
		if err := f.uc.SendForecast(context.Background(), 0); err == nil {
			t.Fatal("want error when the forecast fetch fails")
		}
		if len(f.bot.Sent) != 0 {
			t.Fatalf("sent %d messages after a failed fetch, want 0", len(f.bot.Sent))
		}
	})

	t.Run("summarizer failure stops delivery", func(t *testing.T) {
		f := newMessageFixture(t, at)
		f.provider.Forecast = &model.ForecastWindow{ValidText: "now"}
		f.summarizer.Err = errors.New("quota exhausted")
		if err := f.uc.SendForecast(context.Background(), 0); err == nil {
			t.Fatal("want error when summarization fails")
		}
		if len(f.bot.Sent) != 0 {
			t.Fatalf("sent %d messages after a failed summary, want 0", len(f.bot.Sent))
		}
	})
}
