package domain

import (
	"strings"
	"time"
)

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []Hero    `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TeamMembership struct {
	TeamID      string    `json:"teamId"`
	SuperheroID int       `json:"superheroId"`
	AddedAt     time.Time `json:"addedAt"`
}

// HasMember reports whether heroID is already on the team.
func (t *Team) HasMember(heroID int) bool {
	for _, m := range t.Members {
		if m.ID == heroID {
			return true
		}
	}
	return false
}

func ValidateTeamName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidTeamName
	}
	return nil
}
