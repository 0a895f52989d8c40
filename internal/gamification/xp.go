// Package gamification holds the XP, level and streak milestone rules.
package gamification

// XP awarded per activity.
const (
	XPCorrectAnswer = 10
	XPFocusSession  = 25
)

// XPPerLevel is the XP span of one level.
const XPPerLevel = 500

// LevelForXP returns the level reached with xp points. Level 1 starts at 0.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPToNextLevel returns how many points are missing to reach the next level.
func XPToNextLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return XPPerLevel - xp%XPPerLevel
}
