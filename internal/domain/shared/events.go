// Package shared contains common domain types, errors, events, and ports
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event marks a progression transition that the
// notification subsystem may render into a user-facing message; the core
// only emits structured context, never formatted text.
const (
	// Award events
	EventBadgeAwarded     EventType = "award.badge_earned"
	EventMilestoneAwarded EventType = "award.milestone_earned"
	EventTierAdvanced     EventType = "award.tier_advanced"

	// Rating events
	EventRatingSubmitted EventType = "rating.submitted"

	// Leaderboard events
	EventLeaderboardRebuilt EventType = "leaderboard.rebuilt"

	// System events
	EventSyncCompleted EventType = "system.sync_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// XPContext carries the XP breakdown attached to progression events.
// Values are always recomputed live at emission time - the denormalized
// XP cache may lag and must never feed a notification.
type XPContext struct {
	Total      int `json:"total"`
	ProgressXP int `json:"progress_xp"`
	BadgeXP    int `json:"badge_xp"`
}

// NextTierContext describes the next unearned rung of a ladder.
type NextTierContext struct {
	Tier               int `json:"tier"`
	RequiredValue      int `json:"required_value"`
	CurrentValue       int `json:"current_value"`
	ProgressPercentage int `json:"progress_percentage"`
}

// BadgeAwardedEvent is emitted when a profile earns a badge tier.
type BadgeAwardedEvent struct {
	BaseEvent
	ProfileID  string           `json:"profile_id"`
	SeriesSlug string           `json:"series_slug"`
	Tier       int              `json:"tier"`
	NextTier   *NextTierContext `json:"next_tier,omitempty"`
	XP         XPContext        `json:"xp"`
}

// Payload implements Event interface.
func (e BadgeAwardedEvent) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"profile_id":  e.ProfileID,
		"series_slug": e.SeriesSlug,
		"tier":        e.Tier,
		"xp_total":    e.XP.Total,
		"progress_xp": e.XP.ProgressXP,
		"badge_xp":    e.XP.BadgeXP,
	}
	if e.NextTier != nil {
		p["next_tier"] = e.NextTier.Tier
		p["next_tier_progress"] = e.NextTier.ProgressPercentage
	}
	return p
}

// NewBadgeAwardedEvent creates a new BadgeAwardedEvent.
func NewBadgeAwardedEvent(profileID, seriesSlug string, tier int, next *NextTierContext, xp XPContext) BadgeAwardedEvent {
	return BadgeAwardedEvent{
		BaseEvent:  NewBaseEvent(EventBadgeAwarded, profileID),
		ProfileID:  profileID,
		SeriesSlug: seriesSlug,
		Tier:       tier,
		NextTier:   next,
		XP:         xp,
	}
}

// MilestoneAwardedEvent is emitted when a profile earns a milestone tier.
type MilestoneAwardedEvent struct {
	BaseEvent
	ProfileID    string           `json:"profile_id"`
	CriteriaType string           `json:"criteria_type"`
	Tier         int              `json:"tier"`
	Value        int              `json:"value"`
	NextTier     *NextTierContext `json:"next_tier,omitempty"`
}

// Payload implements Event interface.
func (e MilestoneAwardedEvent) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"profile_id":    e.ProfileID,
		"criteria_type": e.CriteriaType,
		"tier":          e.Tier,
		"value":         e.Value,
	}
	if e.NextTier != nil {
		p["next_tier"] = e.NextTier.Tier
		p["next_tier_progress"] = e.NextTier.ProgressPercentage
	}
	return p
}

// NewMilestoneAwardedEvent creates a new MilestoneAwardedEvent.
func NewMilestoneAwardedEvent(profileID, criteriaType string, tier, value int, next *NextTierContext) MilestoneAwardedEvent {
	return MilestoneAwardedEvent{
		BaseEvent:    NewBaseEvent(EventMilestoneAwarded, profileID),
		ProfileID:    profileID,
		CriteriaType: criteriaType,
		Tier:         tier,
		Value:        value,
		NextTier:     next,
	}
}

// RatingSubmittedEvent is emitted when a rating is created or replaced.
type RatingSubmittedEvent struct {
	BaseEvent
	ProfileID string `json:"profile_id"`
	ConceptID string `json:"concept_id"`
	GroupID   string `json:"group_id,omitempty"`
}

// Payload implements Event interface.
func (e RatingSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"profile_id": e.ProfileID,
		"concept_id": e.ConceptID,
		"group_id":   e.GroupID,
	}
}

// NewRatingSubmittedEvent creates a new RatingSubmittedEvent.
func NewRatingSubmittedEvent(profileID, conceptID, groupID string) RatingSubmittedEvent {
	return RatingSubmittedEvent{
		BaseEvent: NewBaseEvent(EventRatingSubmitted, profileID),
		ProfileID: profileID,
		ConceptID: conceptID,
		GroupID:   groupID,
	}
}

// LeaderboardRebuiltEvent is emitted after a batch rebuild stores a snapshot.
type LeaderboardRebuiltEvent struct {
	BaseEvent
	Key     string `json:"key"`
	Entries int    `json:"entries"`
}

// Payload implements Event interface.
func (e LeaderboardRebuiltEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"key":     e.Key,
		"entries": e.Entries,
	}
}

// NewLeaderboardRebuiltEvent creates a new LeaderboardRebuiltEvent.
func NewLeaderboardRebuiltEvent(key string, entries int) LeaderboardRebuiltEvent {
	return LeaderboardRebuiltEvent{
		BaseEvent: NewBaseEvent(EventLeaderboardRebuilt, key),
		Key:       key,
		Entries:   entries,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards all events. Useful in tests and one-shot tools.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
