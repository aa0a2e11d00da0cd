package catalog

import (
	"bytes"
	"errors"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dom/superhero-teams/internal/domain"
)

// Stat is a power statistic as the feed publishes it. Depending on the
// record it arrives as a quoted number, a bare number, "null" or null.
type Stat string

func (s *Stat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Stat(str)
		return nil
	}
	*s = Stat(data)
	return nil
}

// statLimit bounds parsed stats so out-of-range feed values stay
// representable and still push the score to its ceiling.
const statLimit = math.MaxInt32

// Int parses the stat. Anything that is not a finite number counts as 0.
func (s Stat) Int() int {
	v := strings.TrimSpace(string(s))
	if n, err := strconv.Atoi(v); err == nil {
		return clampStat(float64(n))
	}
	// ParseFloat reports overflow as ±Inf with ErrRange; a literal "Inf"
	// or "NaN" parses without error and is not a stat.
	f, err := strconv.ParseFloat(v, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return clampStat(f)
	case err != nil, math.IsNaN(f), math.IsInf(f, 0):
		return 0
	}
	return clampStat(f)
}

func clampStat(f float64) int {
	return int(math.Max(-statLimit, math.Min(statLimit, f)))
}

type RawPowerstats struct {
	Intelligence Stat `json:"intelligence"`
	Strength     Stat `json:"strength"`
	Speed        Stat `json:"speed"`
	Durability   Stat `json:"durability"`
	Power        Stat `json:"power"`
	Combat       Stat `json:"combat"`
}

func (p RawPowerstats) Parse() domain.Powerstats {
	return domain.Powerstats{
		Intelligence: p.Intelligence.Int(),
		Strength:     p.Strength.Int(),
		Speed:        p.Speed.Int(),
		Durability:   p.Durability.Int(),
		Power:        p.Power.Int(),
		Combat:       p.Combat.Int(),
	}
}

// RawBiography uses pointers because the feed sends null for unknown values.
type RawBiography struct {
	FullName        *string  `json:"fullName"`
	AlterEgos       *string  `json:"alterEgos"`
	Aliases         []string `json:"aliases"`
	PlaceOfBirth    *string  `json:"placeOfBirth"`
	FirstAppearance *string  `json:"firstAppearance"`
	Publisher       *string  `json:"publisher"`
	Alignment       *string  `json:"alignment"`
}

// RawHero is one record of the remote catalog payload.
type RawHero struct {
	ID          int                `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Powerstats  RawPowerstats      `json:"powerstats"`
	Appearance  domain.Appearance  `json:"appearance"`
	Biography   *RawBiography      `json:"biography"`
	Work        domain.Work        `json:"work"`
	Connections domain.Connections `json:"connections"`
	Images      domain.Images      `json:"images"`
	// Present in some mirrors of the feed; never trusted.
	PowerScore *float64 `json:"powerScore,omitempty"`
}
