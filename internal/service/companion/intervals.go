package companion

import "github.com/Temutjin2k/niva/internal/domain/models"

const (
	DefaultPingInterval    = 3  // minutes
	DefaultCheckInInterval = 15 // minutes
)

// band maps sessions up to upTo minutes long onto a ping and check-in cadence.
type band struct {
	upTo    int
	ping    int
	checkIn int
	tier    string
}

var bands = []band{
	{upTo: 15, ping: 1, checkIn: 5, tier: "ultra-frequent"},
	{upTo: 30, ping: 2, checkIn: 8, tier: "frequent"},
	{upTo: 60, ping: 3, checkIn: 15, tier: "regular"},
	{upTo: 240, ping: 5, checkIn: 30, tier: "balanced"},
}

var longBand = band{ping: 10, checkIn: 60, tier: "relaxed"}

func bandFor(total int) band {
	for _, b := range bands {
		if total <= b.upTo {
			return b
		}
	}
	return longBand
}

// DefaultIntervals is the cadence of a session without a duration.
func DefaultIntervals() models.Intervals {
	return models.Intervals{
		PingInterval:    DefaultPingInterval,
		CheckInInterval: DefaultCheckInInterval,
	}
}

// SmartIntervals picks ping and check-in intervals in minutes from the total session
// duration and tightens them as the remaining time shrinks.
// A nil remaining is treated as the whole duration still ahead.
func SmartIntervals(total, remaining *int) models.Intervals {
	if total == nil || *total <= 0 {
		return DefaultIntervals()
	}

	b := bandFor(*total)
	ping, checkIn := b.ping, b.checkIn

	left := *total
	if remaining != nil {
		left = max(0, *remaining)
	}

	switch {
	case left <= 15:
		ping = max(1, ping/2)
		checkIn = max(3, checkIn/3)
	case left <= 30:
		ping = max(1, ping*3/4)
		checkIn = max(5, checkIn/2)
	case left <= 60:
		checkIn = max(10, checkIn*3/4)
	}

	return models.Intervals{PingInterval: ping, CheckInInterval: checkIn}
}

// Tier returns the monitoring tier label for a session duration, or "" without one.
func Tier(total *int) string {
	if total == nil || *total <= 0 {
		return ""
	}
	return bandFor(*total).tier
}

// RouteIntervals is the cadence of a route session started without a duration.
func RouteIntervals(routeMinutes int) models.Intervals {
	return models.Intervals{
		PingInterval:    DefaultPingInterval,
		CheckInInterval: max(5, routeMinutes/3),
	}
}
