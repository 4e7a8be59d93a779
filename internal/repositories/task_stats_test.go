package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsWindow(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, 5, 10, 1, 30, 0, 0, jst)

	dayStart, dayEnd, weekAgo := StatsWindow(now)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, jst), dayStart)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, jst), dayEnd)
	assert.Equal(t, time.Date(2024, 5, 3, 1, 30, 0, 0, jst), weekAgo)
}
