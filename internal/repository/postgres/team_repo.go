package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateTeam(ctx context.Context, team *domain.Team) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if err := domain.ValidateTeamName(team.Name); err != nil {
		return err
	}

	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	now := s.now()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	team.UpdatedAt = now
	if team.Members == nil {
		team.Members = []domain.Hero{}
	}

	rec := &teamRecord{
		ID:        team.ID,
		Name:      team.Name,
		CreatedAt: team.CreatedAt,
		UpdatedAt: team.UpdatedAt,
	}
	if err := db.Create(rec).Error; err != nil {
		return fmt.Errorf("create team %s: %w", team.ID, err)
	}
	return nil
}

// ListTeams returns every team ordered by name, each with its members
// ordered by hero name.
func (s *Store) ListTeams(ctx context.Context) ([]domain.Team, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var teams []teamRecord
	if err := db.Order("name ASC").Order("created_at ASC").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		return []domain.Team{}, nil
	}

	ids := make([]string, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	members, err := s.membersByTeam(db, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Team, len(teams))
	for i, t := range teams {
		result[i] = t.toDomain(members[t.ID])
	}
	return result, nil
}

func (s *Store) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var rec teamRecord
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team %s: %w", id, err)
	}

	members, err := s.membersByTeam(db, []string{id})
	if err != nil {
		return nil, err
	}
	team := rec.toDomain(members[id])
	return &team, nil
}

// ListTeamMembers returns an empty list for a team that does not exist.
func (s *Store) ListTeamMembers(ctx context.Context, teamID string) ([]domain.Hero, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.membersByTeam(db, []string{teamID})
	if err != nil {
		return nil, err
	}
	if members[teamID] == nil {
		return []domain.Hero{}, nil
	}
	return members[teamID], nil
}

// AddMember is idempotent: adding an existing member changes nothing.
// Unknown team or hero ids are rejected by the foreign keys.
func (s *Store) AddMember(ctx context.Context, teamID string, heroID int) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		now := s.now()
		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&teamMemberRecord{
				TeamID:      teamID,
				SuperheroID: heroID,
				AddedAt:     now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&teamRecord{}).Where("id = ?", teamID).UpdateColumn("updated_at", now).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("add hero %d to team %s: %w", heroID, teamID, domain.ErrReferenceNotFound)
		}
		return fmt.Errorf("add hero %d to team %s: %w", heroID, teamID, err)
	}
	return nil
}

// RemoveMember is a no-op for a hero that is not on the team.
func (s *Store) RemoveMember(ctx context.Context, teamID string, heroID int) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&teamRecord{}).Where("id = ?", teamID).Count(&count).Error; err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
		if count == 0 {
			return domain.ErrTeamNotFound
		}

		result := tx.Where("team_id = ? AND superhero_id = ?", teamID, heroID).Delete(&teamMemberRecord{})
		if result.Error != nil {
			return fmt.Errorf("remove hero %d from team %s: %w", heroID, teamID, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&teamRecord{}).Where("id = ?", teamID).UpdateColumn("updated_at", s.now()).Error
	})
}

// DeleteTeam removes the team; its memberships go with it through the
// ON DELETE CASCADE foreign key.
func (s *Store) DeleteTeam(ctx context.Context, teamID string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", teamID).Delete(&teamRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete team %s: %w", teamID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrTeamNotFound
	}

	s.logger.Info("team deleted", zap.String("team_id", teamID))
	return nil
}

func (s *Store) membersByTeam(db *gorm.DB, teamIDs []string) (map[string][]domain.Hero, error) {
	var rows []memberRow
	err := db.Table("heroes").
		Select("heroes.*, team_members.team_id AS member_team_id").
		Joins("JOIN team_members ON team_members.superhero_id = heroes.id").
		Where("team_members.team_id IN ?", teamIDs).
		Order("heroes.name ASC").Order("heroes.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}

	members := make(map[string][]domain.Hero, len(teamIDs))
	for _, row := range rows {
		hero, err := row.Hero.toDomain()
		if err != nil {
			return nil, err
		}
		members[row.MemberTeamID] = append(members[row.MemberTeamID], hero)
	}
	return members, nil
}
