package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func event(typ EventType, title string, date time.Time, priority float64) *Event {
	return &Event{Type: typ, Title: title, Date: date, Priority: priority}
}

func milestoneEvent(title string, date time.Time, target int) *Event {
	return event(EventMilestone, title, date, MilestonePriority(target))
}

func types(events []*Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func titles(events []*Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestMilestonePriority(t *testing.T) {
	assert.InDelta(t, 8.0, MilestonePriority(10), 1e-9)
	assert.InDelta(t, 9.0, MilestonePriority(100), 1e-9)
	assert.InDelta(t, 10.0, MilestonePriority(1000), 1e-9)

	// Targets below 10 clamp to the floor of the scale.
	assert.InDelta(t, 8.0, MilestonePriority(1), 1e-9)

	// Huge targets cap at 10 instead of dominating everything.
	assert.InDelta(t, 10.0, MilestonePriority(50000), 1e-9)
}

func TestBadgePriority(t *testing.T) {
	assert.InDelta(t, 3.0, BadgePriority(1), 1e-9)
	assert.InDelta(t, 6.0, BadgePriority(4), 1e-9)
}

func TestSelect_TooFewCandidates(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
	}

	assert.Nil(t, Select(candidates, 10))
}

func TestSelect_NilOnEmptyInput(t *testing.T) {
	assert.Nil(t, Select(nil, 10))
	assert.Nil(t, Select([]*Event{event(EventJoined, "j", day(0), PriorityJoined)}, 0))
}

func TestSelect_GuaranteedEventsAlwaysIncluded(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
		milestoneEvent("10 plats", day(10), 10),
		milestoneEvent("25 plats", day(20), 25),
		milestoneEvent("50 plats", day(30), 50),
	}

	// maxEvents 3 leaves a single pool slot, yet both guaranteed
	// events survive.
	selected := Select(candidates, 3)
	require.NotNil(t, selected)

	got := types(selected)
	assert.Contains(t, got, EventJoined)
	assert.Contains(t, got, EventFirstPlatinum)
	assert.Len(t, selected, 3)
}

func TestSelect_FirstTrophySuppressedByFirstPlatinum(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstTrophy, "first trophy", day(1), PriorityFirstTrophy),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
		milestoneEvent("10 plats", day(10), 10),
	}

	selected := Select(candidates, 10)
	require.NotNil(t, selected)
	assert.NotContains(t, types(selected), EventFirstTrophy)
}

func TestSelect_FirstTrophyKeptWithoutFirstPlatinum(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstTrophy, "first trophy", day(1), PriorityFirstTrophy),
		milestoneEvent("10 plats", day(10), 10),
	}

	selected := Select(candidates, 10)
	require.NotNil(t, selected)
	assert.Contains(t, types(selected), EventFirstTrophy)
}

func TestSelect_AtMostThreeMilestones(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
		milestoneEvent("10 plats", day(10), 10),
		milestoneEvent("25 plats", day(20), 25),
		milestoneEvent("50 plats", day(30), 50),
		milestoneEvent("100 plats", day(40), 100),
		milestoneEvent("250 plats", day(50), 250),
	}

	selected := Select(candidates, 20)
	require.NotNil(t, selected)

	milestones := 0
	for _, e := range selected {
		if e.Type == EventMilestone {
			milestones++
		}
	}
	assert.Equal(t, MaxMilestoneEvents, milestones)

	// Highest and lowest targets are always among the picks.
	got := titles(selected)
	assert.Contains(t, got, "250 plats")
	assert.Contains(t, got, "10 plats")
}

func TestSelect_AtMostTwoBadges(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
		event(EventBadge, "tier 4 badge", day(10), BadgePriority(4)),
		event(EventBadge, "tier 3 badge", day(11), BadgePriority(3)),
		event(EventBadge, "tier 2 badge", day(12), BadgePriority(2)),
		event(EventBadge, "tier 1 badge", day(13), BadgePriority(1)),
	}

	selected := Select(candidates, 20)
	require.NotNil(t, selected)

	got := titles(selected)
	assert.Contains(t, got, "tier 4 badge")
	assert.Contains(t, got, "tier 3 badge")
	assert.NotContains(t, got, "tier 2 badge")
	assert.NotContains(t, got, "tier 1 badge")
}

func TestSelect_RespectsMaxEvents(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
		milestoneEvent("10 plats", day(10), 10),
		milestoneEvent("25 plats", day(20), 25),
		event(EventFastestPlatinum, "fastest", day(25), PriorityFastestPlatinum),
		event(EventRarestPlatinum, "rarest", day(26), PriorityRarestPlatinum),
		event(EventBadge, "tier 2 badge", day(30), BadgePriority(2)),
	}

	selected := Select(candidates, 5)
	require.NotNil(t, selected)
	assert.Len(t, selected, 5)
}

func TestSelect_LowerPriorityEventsCutFirst(t *testing.T) {
	candidates := []*Event{
		event(EventJoined, "joined", day(0), PriorityJoined),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
		milestoneEvent("100 plats", day(10), 100),
		event(EventBadge, "tier 1 badge", day(30), BadgePriority(1)),
	}

	selected := Select(candidates, 3)
	require.NotNil(t, selected)
	assert.NotContains(t, titles(selected), "tier 1 badge")
	assert.Contains(t, titles(selected), "100 plats")
}

func TestSelect_ChronologicalOutput(t *testing.T) {
	candidates := []*Event{
		milestoneEvent("25 plats", day(20), 25),
		event(EventFirstPlatinum, "first plat", day(5), PriorityFirstPlatinum),
		event(EventJoined, "joined", day(0), PriorityJoined),
		milestoneEvent("10 plats", day(10), 10),
	}

	selected := Select(candidates, 10)
	require.NotNil(t, selected)

	for i := 1; i < len(selected); i++ {
		assert.False(t, selected[i].Date.Before(selected[i-1].Date),
			"events must be sorted by date ascending")
	}
	assert.Equal(t, EventJoined, selected[0].Type)
}
