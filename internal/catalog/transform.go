package catalog

import (
	"math"

	"github.com/dom/superhero-teams/internal/domain"
)

const (
	weightIntelligence = 0.15
	weightStrength     = 0.20
	weightSpeed        = 0.15
	weightDurability   = 0.20
	weightPower        = 0.20
	weightCombat       = 0.10

	minPowerScore = 0
	maxPowerScore = 100
)

// PowerScore is the weighted sum of the six stats, clamped to [0, 100] and
// rounded to two decimals.
func PowerScore(p domain.Powerstats) float64 {
	score := weightIntelligence*float64(p.Intelligence) +
		weightStrength*float64(p.Strength) +
		weightSpeed*float64(p.Speed) +
		weightDurability*float64(p.Durability) +
		weightPower*float64(p.Power) +
		weightCombat*float64(p.Combat)

	score = math.Max(minPowerScore, math.Min(maxPowerScore, score))
	return math.Round(score*100) / 100
}

// Transform normalizes a remote record. The score is always recomputed and
// the favorite flag always starts false since the feed has no user state.
func Transform(raw RawHero) domain.Hero {
	stats := raw.Powerstats.Parse()
	bio := transformBiography(raw.Biography)

	return domain.Hero{
		ID:          raw.ID,
		Name:        raw.Name,
		Slug:        raw.Slug,
		RealName:    bio.FullName,
		Powerstats:  stats,
		Appearance:  raw.Appearance,
		Biography:   bio,
		Work:        raw.Work,
		Connections: raw.Connections,
		Images:      raw.Images,
		PowerScore:  PowerScore(stats),
		IsFavorite:  false,
	}
}

func TransformAll(raws []RawHero) []domain.Hero {
	heroes := make([]domain.Hero, 0, len(raws))
	for _, raw := range raws {
		heroes = append(heroes, Transform(raw))
	}
	return heroes
}

func transformBiography(raw *RawBiography) domain.Biography {
	if raw == nil {
		return domain.Biography{}
	}
	return domain.Biography{
		FullName:        deref(raw.FullName),
		AlterEgos:       deref(raw.AlterEgos),
		Aliases:         raw.Aliases,
		PlaceOfBirth:    deref(raw.PlaceOfBirth),
		FirstAppearance: deref(raw.FirstAppearance),
		Publisher:       deref(raw.Publisher),
		Alignment:       deref(raw.Alignment),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
