package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/billing_dashboard/internal/models"
	"github.com/SscSPs/billing_dashboard/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)
	query := `
        INSERT INTO users (email, name, password_hash, profile_pic_url, plan, auth_provider, created_at, last_updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `
	_, err := r.Pool.Exec(ctx, query,
		modelUser.Email,
		modelUser.Name,
		modelUser.PasswordHash,
		modelUser.ProfilePicURL,
		modelUser.Plan,
		modelUser.AuthProvider,
		modelUser.CreatedAt,
		modelUser.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("%w: failed to save user: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT email, name, password_hash, profile_pic_url, plan, auth_provider, created_at, last_updated_at
		FROM users
		WHERE email = $1;
	`
	var modelUser models.User
	err := r.Pool.QueryRow(ctx, query, email).Scan(
		&modelUser.Email,
		&modelUser.Name,
		&modelUser.PasswordHash,
		&modelUser.ProfilePicURL,
		&modelUser.Plan,
		&modelUser.AuthProvider,
		&modelUser.CreatedAt,
		&modelUser.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to find user by email %s: %v", apperrors.ErrPersistence, email, err)
	}

	domainUser := mapping.ToDomainUser(modelUser)
	return &domainUser, nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)
	query := `
		UPDATE users
		SET name = $2, password_hash = $3, profile_pic_url = $4, plan = $5, auth_provider = $6, last_updated_at = $7
		WHERE email = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelUser.Email,
		modelUser.Name,
		modelUser.PasswordHash,
		modelUser.ProfilePicURL,
		modelUser.Plan,
		modelUser.AuthProvider,
		modelUser.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update user %s: %v", apperrors.ErrPersistence, user.Email, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrNotFound)
	}
	return nil
}
