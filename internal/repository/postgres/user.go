package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

const userColumns = `id, uid, username, email, avatar, inscription_date, personal_score, COALESCE(crew_id, '')`

// UserRepository implements repository.UserRepository for PostgreSQL
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user without a crew
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, uid, username, email, avatar, inscription_date, personal_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.UID, user.Username, user.Email, user.Avatar, user.InscriptionDate, user.PersonalScore,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrUserExists
		}
		return err
	}

	return nil
}

// GetByID retrieves a user by internal id
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByUID retrieves a user by external uid
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return r.getOne(ctx, query, uid)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByIDs returns the users with the given ids in the same order, skipping unknown ids
func (r *UserRepository) GetByIDs(ctx context.Context, userIDs []string) ([]*domain.User, error) {
	if len(userIDs) == 0 {
		return []*domain.User{}, nil
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ANY($1::text[])
		ORDER BY array_position($1::text[], id)
	`

	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0, len(userIDs))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// SetCrewIfAbsent sets the crew pointer only while it is still NULL
func (r *UserRepository) SetCrewIfAbsent(ctx context.Context, userID, crewID string) (bool, error) {
	query := `
		UPDATE users
		SET crew_id = $2, updated_at = NOW()
		WHERE id = $1 AND crew_id IS NULL
	`

	result, err := r.db.Exec(ctx, query, userID, crewID)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

// ClearCrew unsets the crew pointer only while it still references crewID
func (r *UserRepository) ClearCrew(ctx context.Context, userID, crewID string) (bool, error) {
	query := `
		UPDATE users
		SET crew_id = NULL, updated_at = NOW()
		WHERE id = $1 AND crew_id = $2
	`

	result, err := r.db.Exec(ctx, query, userID, crewID)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.UID,
		&user.Username,
		&user.Email,
		&user.Avatar,
		&user.InscriptionDate,
		&user.PersonalScore,
		&user.CrewID,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
