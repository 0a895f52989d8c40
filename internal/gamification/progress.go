package gamification

// Progress is the derived gamification view of a profile.
type Progress struct {
	Level               int    `json:"level"`
	XPToNextLevel       int    `json:"xp_to_next_level"`
	NextStreakMilestone int    `json:"next_streak_milestone"`
	StreakBadge         Rarity `json:"streak_badge,omitempty"`
	StreakBadgeLabel    string `json:"streak_badge_label,omitempty"`
}

// ProgressFor computes the view for the given XP and effective streak.
func ProgressFor(xp, streak int) Progress {
	badge := StreakRarity(streak)
	return Progress{
		Level:               LevelForXP(xp),
		XPToNextLevel:       XPToNextLevel(xp),
		NextStreakMilestone: NextStreakMilestone(streak),
		StreakBadge:         badge,
		StreakBadgeLabel:    badge.DisplayName(),
	}
}
