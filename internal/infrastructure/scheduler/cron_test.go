package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression_FiveFieldsRequired(t *testing.T) {
	_, err := ParseCronExpression("* * * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("0 4 * * *")
	assert.NoError(t, err)
}

func TestParseCronExpression_RejectsOutOfRange(t *testing.T) {
	_, err := ParseCronExpression("61 * * * *")
	assert.Error(t, err)

	_, err = ParseCronExpression("* 25 * * *")
	assert.Error(t, err)
}

func TestCronExpression_NextDailyAnchor(t *testing.T) {
	ce, err := ParseCronExpression("0 4 * * *")
	require.NoError(t, err)

	after := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	next := ce.Next(after)

	assert.Equal(t, time.Date(2026, 8, 26, 4, 0, 0, 0, time.UTC), next)
}

func TestCronExpression_NextStep(t *testing.T) {
	ce, err := ParseCronExpression("*/15 * * * *")
	require.NoError(t, err)

	after := time.Date(2026, 8, 25, 10, 16, 0, 0, time.UTC)
	next := ce.Next(after)

	assert.Equal(t, time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC), next)
}

func TestCronExpression_Weekday(t *testing.T) {
	ce, err := ParseCronExpression(EverySunday)
	require.NoError(t, err)

	// 2026-08-25 is a Tuesday.
	after := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	next := ce.Next(after)

	assert.Equal(t, time.Sunday, next.Weekday())
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), next)
}

func TestCronSchedule_ImplementsSchedule(t *testing.T) {
	s, err := NewCronSchedule("0 * * * *")
	require.NoError(t, err)

	var _ Schedule = s
	assert.Equal(t, "cron(0 * * * *)", s.String())

	after := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 25, 11, 0, 0, 0, time.UTC), s.Next(after))
}

func TestNewCronSchedule_InvalidExpression(t *testing.T) {
	_, err := NewCronSchedule("not a cron")
	assert.Error(t, err)
}
