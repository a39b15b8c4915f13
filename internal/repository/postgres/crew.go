package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository"
)

var _ repository.CrewRepository = (*CrewRepository)(nil)

// CrewRepository implements repository.CrewRepository for PostgreSQL.
// members and admins are TEXT[] columns; each mutation is a single-row UPDATE whose
// WHERE clause re-asserts its precondition, so RowsAffected acts as the matched count.
type CrewRepository struct {
	db *pgxpool.Pool
}

// NewCrewRepository creates a new CrewRepository
func NewCrewRepository(db *pgxpool.Pool) *CrewRepository {
	return &CrewRepository{db: db}
}

// Create inserts a new crew
func (r *CrewRepository) Create(ctx context.Context, crew *domain.Crew) error {
	query := `
		INSERT INTO crews (id, name, creation_date, members, admins)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query, crew.ID, crew.Name, crew.CreationDate, crew.Members, crew.Admins)
	return err
}

// GetByID retrieves a crew with its member and admin ids
func (r *CrewRepository) GetByID(ctx context.Context, crewID string) (*domain.Crew, error) {
	query := `
		SELECT id, name, creation_date, members, admins
		FROM crews
		WHERE id = $1
	`

	var crew domain.Crew
	err := r.db.QueryRow(ctx, query, crewID).Scan(
		&crew.ID,
		&crew.Name,
		&crew.CreationDate,
		&crew.Members,
		&crew.Admins,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCrewNotFound
		}
		return nil, err
	}

	return &crew, nil
}

// AddMember appends userID to members unless already present
func (r *CrewRepository) AddMember(ctx context.Context, crewID, userID string) (bool, error) {
	query := `
		UPDATE crews
		SET members = array_append(members, $2::text)
		WHERE id = $1 AND NOT ($2::text = ANY(members))
	`
	return r.exec(ctx, query, crewID, userID)
}

// RemoveMember strips userID from members and admins.
// It never removes the sole admin or the sole member.
func (r *CrewRepository) RemoveMember(ctx context.Context, crewID, userID string) (bool, error) {
	query := `
		UPDATE crews
		SET members = array_remove(members, $2::text),
		    admins = array_remove(admins, $2::text)
		WHERE id = $1
		  AND $2::text = ANY(members)
		  AND cardinality(members) > 1
		  AND (NOT ($2::text = ANY(admins)) OR cardinality(admins) > 1)
	`
	return r.exec(ctx, query, crewID, userID)
}

// AddAdmin appends userID to admins if it is a member and not yet an admin
func (r *CrewRepository) AddAdmin(ctx context.Context, crewID, userID string) (bool, error) {
	query := `
		UPDATE crews
		SET admins = array_append(admins, $2::text)
		WHERE id = $1
		  AND $2::text = ANY(members)
		  AND NOT ($2::text = ANY(admins))
	`
	return r.exec(ctx, query, crewID, userID)
}

// RemoveAdmin strips userID from admins if it is an admin and not the only one
func (r *CrewRepository) RemoveAdmin(ctx context.Context, crewID, userID string) (bool, error) {
	query := `
		UPDATE crews
		SET admins = array_remove(admins, $2::text)
		WHERE id = $1
		  AND $2::text = ANY(admins)
		  AND cardinality(admins) > 1
	`
	return r.exec(ctx, query, crewID, userID)
}

// DeleteIfSoleMember deletes the crew only while userID is its only member
func (r *CrewRepository) DeleteIfSoleMember(ctx context.Context, crewID, userID string) (bool, error) {
	query := `DELETE FROM crews WHERE id = $1 AND members = ARRAY[$2::text]`
	return r.exec(ctx, query, crewID, userID)
}

// Delete deletes the crew
func (r *CrewRepository) Delete(ctx context.Context, crewID string) (bool, error) {
	query := `DELETE FROM crews WHERE id = $1`
	return r.exec(ctx, query, crewID)
}

func (r *CrewRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
