package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	"github.com/dbp-hq/governance/pkg/composables"
)

const (
	selectUserSQL = `
		SELECT id, employee_code, user_name, email, platform_username
		FROM users`
)

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectUserSQL+` ORDER BY user_name ASC`)
	if err != nil {
		return nil, gerrors.Wrap(err, "list users")
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := tx.QueryRow(ctx, selectUserSQL+` WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectUserSQL+` WHERE id = ANY($1) ORDER BY user_name ASC`, ids)
	if err != nil {
		return nil, gerrors.Wrap(err, "list users by ids")
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := tx.QueryRow(ctx, selectUserSQL+` WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByEmails(ctx context.Context, emails []string) ([]user.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectUserSQL+` WHERE email = ANY($1)`, emails)
	if err != nil {
		return nil, gerrors.Wrap(err, "list users by emails")
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		id                                          int64
		employeeCode, name, email, platformUsername *string
	)
	if err := row.Scan(&id, &employeeCode, &name, &email, &platformUsername); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return user.Hydrate(id, deref(employeeCode), deref(name), deref(email), deref(platformUsername)), nil
}

func scanUsers(rows pgx.Rows) ([]user.User, error) {
	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
