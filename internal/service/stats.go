package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/crew-service/internal/domain"
)

// CrewStats represents statistics for a single crew
type CrewStats struct {
	CrewID      string `json:"crew_id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	AdminCount  int    `json:"admin_count"`
	// StrayMembers are listed in the crew while their own pointer references something else
	StrayMembers int `json:"stray_members"`
}

// ConsistencyStats counts violations of the membership invariants across both stores
type ConsistencyStats struct {
	DanglingPointers int `json:"dangling_pointers"` // users.crew_id pointing at a crew that does not list them
	StrayMembers     int `json:"stray_members"`     // crew members whose pointer does not reference the crew
	AdminlessCrews   int `json:"adminless_crews"`
}

// Stats represents combined statistics
type Stats struct {
	TotalUsers   int              `json:"total_users"`
	UsersInCrews int              `json:"users_in_crews"`
	TotalCrews   int              `json:"total_crews"`
	Consistency  ConsistencyStats `json:"consistency"`
}

// StatsService handles statistics queries
type StatsService struct {
	db *pgxpool.Pool
}

// NewStatsService creates a new StatsService
func NewStatsService(db *pgxpool.Pool) *StatsService {
	return &StatsService{db: db}
}

// GetStats returns overall statistics and the consistency audit
func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	countsQuery := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE crew_id IS NOT NULL) AS users_in_crews,
			(SELECT COUNT(*) FROM crews) AS total_crews,
			(SELECT COUNT(*) FROM crews WHERE cardinality(admins) = 0) AS adminless_crews
	`

	if err := s.db.QueryRow(ctx, countsQuery).Scan(
		&stats.TotalUsers,
		&stats.UsersInCrews,
		&stats.TotalCrews,
		&stats.Consistency.AdminlessCrews,
	); err != nil {
		return nil, err
	}

	danglingQuery := `
		SELECT COUNT(*)
		FROM users u
		WHERE u.crew_id IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM crews c WHERE c.id = u.crew_id AND u.id = ANY(c.members)
		  )
	`

	if err := s.db.QueryRow(ctx, danglingQuery).Scan(&stats.Consistency.DanglingPointers); err != nil {
		return nil, err
	}

	strayQuery := `
		SELECT COUNT(*)
		FROM crews c
		CROSS JOIN LATERAL unnest(c.members) AS m(user_id)
		LEFT JOIN users u ON u.id = m.user_id
		WHERE u.crew_id IS DISTINCT FROM c.id
	`

	if err := s.db.QueryRow(ctx, strayQuery).Scan(&stats.Consistency.StrayMembers); err != nil {
		return nil, err
	}

	return stats, nil
}

// GetCrewStats returns statistics for a specific crew
func (s *StatsService) GetCrewStats(ctx context.Context, crewID string) (*CrewStats, error) {
	query := `
		SELECT
			c.id,
			c.name,
			cardinality(c.members),
			cardinality(c.admins),
			(
				SELECT COUNT(*)
				FROM unnest(c.members) AS m(user_id)
				LEFT JOIN users u ON u.id = m.user_id
				WHERE u.crew_id IS DISTINCT FROM c.id
			)
		FROM crews c
		WHERE c.id = $1
	`

	var stats CrewStats
	err := s.db.QueryRow(ctx, query, crewID).Scan(
		&stats.CrewID,
		&stats.Name,
		&stats.MemberCount,
		&stats.AdminCount,
		&stats.StrayMembers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCrewNotFound
		}
		return nil, err
	}

	return &stats, nil
}
