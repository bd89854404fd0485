package model

import "time"

// SlotsPerHour is fixed at 2: every hour-of-day bucket splits into two
// half-hour slots keyed by slot number 1 and 2.
const SlotsPerHour = 2

// RainfallStation is cached reference data for one provider weather station.
// Refreshed wholesale on each station-sync run, upserted by ID.
type RainfallStation struct {
	ID        string
	DeviceID  string
	Name      string
	Latitude  float64
	Longitude float64
	UpdatedAt time.Time
}

// RainfallDay is the per-calendar-day aggregation bucket. It is created
// lazily on the first ingestion touching that business day and owns the
// day's slots via their foreign key.
type RainfallDay struct {
	ID           string
	Date         time.Time // midnight in the business timezone
	SlotsPerHour int
	CreatedAt    time.Time
}

// RainfallSlot is the unit of upsert: one half-hour accumulation bucket for
// one station, identified by (DayID, StationID, HourOfDay, SlotNumber).
// RainfallAmount only grows within a slot's life; repeated readings add up.
type RainfallSlot struct {
	ID             string
	DayID          string
	StationID      string
	HourOfDay      int // 0-23
	SlotNumber     int // 1 = first half hour, 2 = second
	RainfallAmount float64
	UpdatedAt      time.Time
}

// SlotNumberAt derives the half-hour slot number for a point in time.
func SlotNumberAt(t time.Time) int {
	if t.Minute() < 30 {
		return 1
	}
	return 2
}

// HourToPrune returns the hour-of-day bucket (inclusive upper bound) that
// falls out of the rolling two-hour retention window at the given hour.
// Wraps across midnight: hour 0 prunes through 22, hour 1 through 23.
func HourToPrune(hour int) int {
	if hour >= 2 {
		return hour - 2
	}
	return 22 + hour
}

// IntensitySettings holds the two thresholds (mm per hour) that partition
// hourly accumulations into intensity tiers. Singleton reference row.
type IntensitySettings struct {
	ID         string
	LowerBound float64
	UpperBound float64
}

type Intensity int

const (
	IntensityNone Intensity = iota
	IntensityLight
	IntensityModerate
	IntensityHeavy
)

func (i Intensity) String() string {
	switch i {
	case IntensityLight:
		return "light"
	case IntensityModerate:
		return "moderate"
	case IntensityHeavy:
		return "heavy"
	default:
		return "none"
	}
}

// Classify buckets an hourly accumulation. Boundary values belong to the
// lower tier: exactly LowerBound is light, exactly UpperBound is moderate,
// and anything <= 0 (including negative readings) is no rainfall.
func (s IntensitySettings) Classify(amount float64) Intensity {
	switch {
	case amount <= 0.0:
		return IntensityNone
	case amount <= s.LowerBound:
		return IntensityLight
	case amount <= s.UpperBound:
		return IntensityModerate
	default:
		return IntensityHeavy
	}
}

// HourlyRainfall is one station's summed accumulation over an hour bucket.
type HourlyRainfall struct {
	StationID string
	Station   string // display name, falls back to the ID when unknown
	Amount    float64
	Intensity Intensity
}

// RainfallSummary groups station names into intensity tiers for the most
// recent hour bucket. Derived, never persisted.
type RainfallSummary struct {
	Hour     int
	None     []string
	Light    []string
	Moderate []string
	Heavy    []string
}

// Add files a station into the tier matching its intensity.
func (s *RainfallSummary) Add(station string, intensity Intensity) {
	switch intensity {
	case IntensityLight:
		s.Light = append(s.Light, station)
	case IntensityModerate:
		s.Moderate = append(s.Moderate, station)
	case IntensityHeavy:
		s.Heavy = append(s.Heavy, station)
	default:
		s.None = append(s.None, station)
	}
}
