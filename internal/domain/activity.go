package domain

import "time"

// ActivityType enumerates logged interactions with a merchant.
type ActivityType string

const (
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeNote    ActivityType = "note"
)

// Activity is a logged interaction with a merchant.
type Activity struct {
	ID         string
	MerchantID string
	CreatedBy  *string
	Type       ActivityType
	Notes      string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// EnrichedActivity is an activity with its author and merchant resolved.
type EnrichedActivity struct {
	Activity
	Author   *Profile
	Merchant *Merchant
}
