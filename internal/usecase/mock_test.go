//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/domain/ports/adapter"
	"notion-reminder-service/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Adapters
// =============================

// ---- Mock WeatherProvider ----

type MockWeatherProvider struct {
	Rainfall    *adapter.RainfallObservations
	RainfallErr error

	Forecast    *model.ForecastWindow
	ForecastErr error

	FetchRainfallFunc func(ctx context.Context) (*adapter.RainfallObservations, error)
}

var _ adapter.WeatherProvider = (*MockWeatherProvider)(nil)

func (m *MockWeatherProvider) FetchRainfall(ctx context.Context) (*adapter.RainfallObservations, error) {
	if m.FetchRainfallFunc != nil {
		return m.FetchRainfallFunc(ctx)
	}
	if m.RainfallErr != nil {
		return nil, m.RainfallErr
	}
	return m.Rainfall, nil
}

func (m *MockWeatherProvider) FetchTwoHourForecast(ctx context.Context) (*model.ForecastWindow, error) {
	if m.ForecastErr != nil {
		return nil, m.ForecastErr
	}
	return m.Forecast, nil
}

// ---- Mock TelegramBotAdapter ----

type sentMessage struct {
	ChatID int64
	Text   string
}

type MockTelegramBot struct {
	mu   sync.Mutex
	Sent []sentMessage

	SendHTMLFunc func(ctx context.Context, chatID int64, text string) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendHTML(ctx context.Context, chatID int64, text string) error {
	if m.SendHTMLFunc != nil {
		return m.SendHTMLFunc(ctx, chatID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

// ---- Mock Summarizer ----

type MockSummarizer struct {
	Reply   string
	Err     error
	Prompts []string
}

var _ adapter.Summarizer = (*MockSummarizer)(nil)

func (m *MockSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// ---- Mock TransactionManager ----

type mockTxManager struct{}

var _ repository.TransactionManager = (*mockTxManager)(nil)

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// ---- Mock DayLocker ----

type MockDayLocker struct {
	mu       sync.Mutex
	Held     bool // simulate another writer holding the day lock
	Locked   []string
	Unlocked []string
}

func (m *MockDayLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Held {
		return "", domain.ErrIngestionLockHeld
	}
	m.Locked = append(m.Locked, key)
	return "tok-" + key, nil
}

func (m *MockDayLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unlocked = append(m.Unlocked, key)
	return nil
}

// =============================
// Repositories
// =============================

// memStationRepo is a small in-memory implementation used by unit tests.
type memStationRepo struct {
	mu    sync.RWMutex
	store map[string]*model.RainfallStation
}

func newMemStationRepo() *memStationRepo {
	return &memStationRepo{store: make(map[string]*model.RainfallStation)}
}

var _ repository.RainfallStationRepository = (*memStationRepo)(nil)

func (m *memStationRepo) UpsertAll(ctx context.Context, tx repository.Tx, stations []*model.RainfallStation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range stations {
		cp := *s
		m.store[s.ID] = &cp
	}
	return nil
}

func (m *memStationRepo) NamesByIDs(ctx context.Context, tx repository.Tx, ids []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if s, ok := m.store[id]; ok {
			out[id] = s.Name
		}
	}
	return out, nil
}

func (m *memStationRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.RainfallStation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.RainfallStation, 0, len(m.store))
	for _, s := range m.store {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

// memDayRepo keyed by date (YYYY-MM-DD).
type memDayRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.RainfallDay
	createErr error
}

func newMemDayRepo() *memDayRepo {
	return &memDayRepo{store: make(map[string]*model.RainfallDay)}
}

var _ repository.RainfallDayRepository = (*memDayRepo)(nil)

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func (m *memDayRepo) FindByDate(ctx context.Context, tx repository.Tx, date time.Time) (*model.RainfallDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[dateKey(date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDayRepo) Create(ctx context.Context, tx repository.Tx, day *model.RainfallDay) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dateKey(day.Date)
	// ON CONFLICT DO NOTHING: the first creator's row wins.
	if _, ok := m.store[key]; ok {
		return nil
	}
	cp := *day
	m.store[key] = &cp
	return nil
}

// memSlotRepo keyed by slot ID, with unique (day, station, hour, slot).
type memSlotRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.RainfallSlot
	upsertErr error

	// Pruned records the hour argument of every DeleteThroughHour call.
	Pruned []int
}

func newMemSlotRepo() *memSlotRepo {
	return &memSlotRepo{store: make(map[string]*model.RainfallSlot)}
}

var _ repository.RainfallSlotRepository = (*memSlotRepo)(nil)

func (m *memSlotRepo) FindForSlot(ctx context.Context, tx repository.Tx, dayID string, hourOfDay, slotNumber int) ([]*model.RainfallSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.RainfallSlot
	for _, s := range m.store {
		if s.DayID == dayID && s.HourOfDay == hourOfDay && s.SlotNumber == slotNumber {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSlotRepo) FindForHour(ctx context.Context, tx repository.Tx, dayID string, hourOfDay int) ([]*model.RainfallSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.RainfallSlot
	for _, s := range m.store {
		if s.DayID == dayID && s.HourOfDay == hourOfDay {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSlotRepo) UpsertAll(ctx context.Context, tx repository.Tx, slots []*model.RainfallSlot) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range slots {
		cp := *s
		m.store[s.ID] = &cp
	}
	return nil
}

func (m *memSlotRepo) DeleteThroughHour(ctx context.Context, tx repository.Tx, dayID string, hour int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pruned = append(m.Pruned, hour)
	var removed int64
	for id, s := range m.store {
		if s.DayID == dayID && s.HourOfDay <= hour {
			delete(m.store, id)
			removed++
		}
	}
	return removed, nil
}

// all returns a snapshot of every stored slot, for assertions.
func (m *memSlotRepo) all() []*model.RainfallSlot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.RainfallSlot, 0, len(m.store))
	for _, s := range m.store {
		cp := *s
		out = append(out, &cp)
	}
	return out
}

// memIntensityRepo holds the singleton thresholds row.
type memIntensityRepo struct {
	mu       sync.RWMutex
	settings *model.IntensitySettings
}

func newMemIntensityRepo(lower, upper float64) *memIntensityRepo {
	return &memIntensityRepo{settings: &model.IntensitySettings{ID: "default", LowerBound: lower, UpperBound: upper}}
}

var _ repository.IntensitySettingsRepository = (*memIntensityRepo)(nil)

func (m *memIntensityRepo) Get(ctx context.Context, tx repository.Tx) (*model.IntensitySettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.settings
	return &cp, nil
}

func (m *memIntensityRepo) Save(ctx context.Context, tx repository.Tx, settings *model.IntensitySettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *settings
	m.settings = &cp
	return nil
}
