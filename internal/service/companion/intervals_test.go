package companion

import (
	"testing"

	"github.com/Temutjin2k/niva/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestSmartIntervals_NoDuration(t *testing.T) {
	assert.Equal(t, DefaultIntervals(), SmartIntervals(nil, nil))
	assert.Equal(t, DefaultIntervals(), SmartIntervals(ptr(0), ptr(10)))
}

func TestSmartIntervals_Bands(t *testing.T) {
	// remaining far away from the end so only the band applies
	far := ptr(1000)

	tests := []struct {
		total int
		want  models.Intervals
	}{
		{15, models.Intervals{PingInterval: 1, CheckInInterval: 5}},
		{16, models.Intervals{PingInterval: 2, CheckInInterval: 8}},
		{30, models.Intervals{PingInterval: 2, CheckInInterval: 8}},
		{31, models.Intervals{PingInterval: 3, CheckInInterval: 15}},
		{60, models.Intervals{PingInterval: 3, CheckInInterval: 15}},
		{61, models.Intervals{PingInterval: 5, CheckInInterval: 30}},
		{240, models.Intervals{PingInterval: 5, CheckInInterval: 30}},
		{241, models.Intervals{PingInterval: 10, CheckInInterval: 60}},
		{1440, models.Intervals{PingInterval: 10, CheckInInterval: 60}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SmartIntervals(ptr(tt.total), far), "total=%d", tt.total)
	}
}

func TestSmartIntervals_Tightening(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		remaining *int
		want      models.Intervals
	}{
		{"long trip, 60 left", 300, ptr(60), models.Intervals{PingInterval: 10, CheckInInterval: 45}},
		{"long trip, 61 left", 300, ptr(61), models.Intervals{PingInterval: 10, CheckInInterval: 60}},
		{"long trip, 30 left", 300, ptr(30), models.Intervals{PingInterval: 7, CheckInInterval: 30}},
		{"long trip, 15 left", 300, ptr(15), models.Intervals{PingInterval: 5, CheckInInterval: 20}},
		{"balanced, 45 left", 120, ptr(45), models.Intervals{PingInterval: 5, CheckInInterval: 22}},
		{"regular, unknown remaining", 60, nil, models.Intervals{PingInterval: 3, CheckInInterval: 11}},
		{"short, floors", 15, nil, models.Intervals{PingInterval: 1, CheckInInterval: 3}},
		{"frequent, 20 left", 30, ptr(20), models.Intervals{PingInterval: 1, CheckInInterval: 5}},
		{"expired", 120, ptr(0), models.Intervals{PingInterval: 2, CheckInInterval: 10}},
		{"negative treated as expired", 120, ptr(-5), models.Intervals{PingInterval: 2, CheckInInterval: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SmartIntervals(ptr(tt.total), tt.remaining))
		})
	}
}

func TestSmartIntervals_NeverBelowFloors(t *testing.T) {
	for total := 1; total <= 1440; total++ {
		for _, rem := range []int{0, 1, 15, 30, 60, total} {
			got := SmartIntervals(ptr(total), ptr(rem))
			assert.GreaterOrEqual(t, got.PingInterval, 1)
			assert.GreaterOrEqual(t, got.CheckInInterval, 3)
		}
	}
}

func TestTier(t *testing.T) {
	assert.Equal(t, "", Tier(nil))
	assert.Equal(t, "ultra-frequent", Tier(ptr(15)))
	assert.Equal(t, "frequent", Tier(ptr(30)))
	assert.Equal(t, "regular", Tier(ptr(60)))
	assert.Equal(t, "balanced", Tier(ptr(240)))
	assert.Equal(t, "relaxed", Tier(ptr(241)))
}

func TestRouteIntervals(t *testing.T) {
	assert.Equal(t, 5, RouteIntervals(9).CheckInInterval)
	assert.Equal(t, 20, RouteIntervals(60).CheckInInterval)
	assert.Equal(t, DefaultPingInterval, RouteIntervals(60).PingInterval)
}
