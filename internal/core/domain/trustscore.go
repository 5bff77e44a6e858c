package domain

// Trust score weights. Each category is capped independently; the raw sum can
// exceed 100, so the final total is always clamped.
const (
	ScoreBase = 20

	CertificationWeight = 15
	CertificationCap    = 30

	EducationWeight = 20
	EducationCap    = 35

	ExperienceWeight = 20
	ExperienceCap    = 35

	ScoreMin = 0
	ScoreMax = 100
)

// Level label thresholds.
const (
	LevelExcellent = "Excellent"
	LevelGood      = "Good"
	LevelBuilding  = "Building"

	levelExcellentAt = 80
	levelGoodAt      = 50
)

// CategoryScore is the per-category slice of a trust score breakdown.
type CategoryScore struct {
	Score    int  `json:"score"`
	Verified bool `json:"verified"`
	Total    int  `json:"total"`
	Count    int  `json:"verified_count"`
}

// TrustScoreBreakdown is a pure projection of a user's credential set. It has
// no lifecycle of its own; it is derived on demand (or cached with the same
// invalidation triggers as the persisted score).
type TrustScoreBreakdown struct {
	TotalScore       int           `json:"total_score"`
	Level            string        `json:"level"`
	Experience       CategoryScore `json:"experience"`
	Education        CategoryScore `json:"education"`
	Certifications   CategoryScore `json:"certifications"`
	NoCertifications bool          `json:"no_certifications"`
}

// ScoreLevel maps a total score to its qualitative label.
func ScoreLevel(total int) string {
	switch {
	case total >= levelExcellentAt:
		return LevelExcellent
	case total >= levelGoodAt:
		return LevelGood
	default:
		return LevelBuilding
	}
}

// ClampScore bounds a raw score sum to the inclusive [ScoreMin, ScoreMax] range.
func ClampScore(raw int) int {
	if raw > ScoreMax {
		return ScoreMax
	}
	if raw < ScoreMin {
		return ScoreMin
	}
	return raw
}
