package sqlite

import (
	"context"
	"time"

	"github.com/plshark/userauth/internal/domain"
	"github.com/plshark/userauth/pkg/idx"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, authorities, created_at, updated_at
		FROM users WHERE username = ?`, username)

	var (
		u           domain.User
		id          string
		authorities string
	)
	err := row.Scan(&id, &u.Username, &u.PasswordHash, &authorities, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.ID, err = idx.Parse(id)
	if err != nil {
		return domain.User{}, err
	}
	u.Authorities = splitAuthorities(authorities)
	return u, nil
}

func (r *usersRepo) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, authorities, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Username, u.PasswordHash, joinAuthorities(u.Authorities), now, now)
	if isUniqueViolation(err) {
		return mapAlreadyExists(err)
	}
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, username, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE username = ?`,
		newHash, time.Now().UTC(), username)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
