package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseScheduleEvery(t *testing.T) {
	s, err := ParseSchedule("every 15m")
	assert.NoError(t, err)
	assert.Equal(t, ScheduleEvery, s.Kind)
	assert.Equal(t, 15*time.Minute, s.Interval)
}

func TestParseScheduleDaily(t *testing.T) {
	s, err := ParseSchedule("daily 18:00")
	assert.NoError(t, err)
	assert.Equal(t, ScheduleDaily, s.Kind)
	assert.Equal(t, 18, s.Hour)
	assert.Equal(t, 0, s.Minute)
}

func TestParseScheduleRejectsInvalid(t *testing.T) {
	cases := []string{
		"",
		"every",
		"every 10s",    // Dưới 1 phút
		"daily 25:00",  // Giờ ngoài khoảng
		"daily 18:60",  // Phút ngoài khoảng
		"daily 18",     // Thiếu phút
		"hourly 18:00", // Kiểu không hỗ trợ
	}
	for _, spec := range cases {
		_, err := ParseSchedule(spec)
		assert.Error(t, err, spec)
	}
}

func TestScheduleDueEvery(t *testing.T) {
	s := EverySchedule(15 * time.Minute)
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.False(t, s.Due(base.Add(10*time.Minute), base))
	assert.True(t, s.Due(base.Add(15*time.Minute), base))
	assert.True(t, s.Due(base.Add(time.Hour), base))
}

func TestScheduleDueDailyFiresOncePerDay(t *testing.T) {
	s := DailySchedule(18, 0)
	morning := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	afternoon := time.Date(2025, 3, 10, 18, 1, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)

	// Chưa tới mốc
	assert.False(t, s.Due(afternoon.Add(-2*time.Minute), morning))
	// Qua mốc, lần chạy trước nằm trước mốc
	assert.True(t, s.Due(afternoon, morning))
	// Đã chạy trong ngày thì không chạy lại
	assert.False(t, s.Due(evening, afternoon))
}

func TestScheduleDueDailyNextDay(t *testing.T) {
	s := DailySchedule(6, 0)
	yesterday := time.Date(2025, 3, 10, 6, 5, 0, 0, time.UTC)
	today := time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC)

	assert.True(t, s.Due(today, yesterday))
}

func TestScheduleDueDailyExactMark(t *testing.T) {
	s := DailySchedule(16, 0)
	mark := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)

	assert.True(t, s.Due(mark, mark.Add(-time.Hour)))
}

func TestEveryScheduleMinimumInterval(t *testing.T) {
	s := EverySchedule(10 * time.Second)
	assert.Equal(t, time.Minute, s.Interval)
}
