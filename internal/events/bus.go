package events

import "log/slog"

// ProfileUpdated signals that a profile row changed outside the profile
// service (streak updates, XP awards).
type ProfileUpdated struct {
	UserID string
	Reason string
}

// XPAwarded is published after a successful XP increment.
type XPAwarded struct {
	UserID    string
	Amount    int
	XP        int
	Level     int
	LeveledUp bool
	Reason    string
}

// Bus groups the application's topics.
type Bus struct {
	ProfileUpdated *Topic[ProfileUpdated]
	XPAwarded      *Topic[XPAwarded]
}

// NewBus creates a bus with empty topics.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		ProfileUpdated: NewTopic[ProfileUpdated]("profile_updated", logger),
		XPAwarded:      NewTopic[XPAwarded]("xp_awarded", logger),
	}
}
