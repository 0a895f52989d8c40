package gamification

// Rarity is the tier of a streak badge.
type Rarity string

const (
	RarityNone      Rarity = ""
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DisplayName returns a Portuguese label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Comum"
	case RarityRare:
		return "Raro"
	case RarityEpic:
		return "Épico"
	case RarityLegendary:
		return "Lendário"
	default:
		return ""
	}
}

// StreakRarity returns the badge tier for a streak length. Streaks shorter
// than BaseStreakMilestone have no badge.
func StreakRarity(length int) Rarity {
	switch {
	case length >= 20:
		return RarityLegendary
	case length >= 15:
		return RarityEpic
	case length >= 10:
		return RarityRare
	case length >= BaseStreakMilestone:
		return RarityCommon
	default:
		return RarityNone
	}
}
