package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/pkg/composables"
)

const (
	selectGroupSQL = `
		SELECT id, group_name, owner_email, dbp_manager_email
		FROM groups`
)

type GroupRepository struct{}

func NewGroupRepository() group.Repository {
	return &GroupRepository{}
}

func (r *GroupRepository) GetAll(ctx context.Context) ([]group.Group, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectGroupSQL+` ORDER BY group_name ASC`)
	if err != nil {
		return nil, gerrors.Wrap(err, "list groups")
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (r *GroupRepository) GetByID(ctx context.Context, id int64) (group.Group, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return group.Group{}, err
	}
	row := tx.QueryRow(ctx, selectGroupSQL+` WHERE id = $1`, id)
	return scanGroup(row)
}

func (r *GroupRepository) GetForUser(ctx context.Context, userID int64) ([]group.Group, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT g.id, g.group_name, g.owner_email, g.dbp_manager_email
		FROM groups g
		JOIN group_members m ON g.id = m.group_id
		WHERE m.user_id = $1
		ORDER BY g.group_name ASC`, userID)
	if err != nil {
		return nil, gerrors.Wrap(err, "list groups for user")
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (r *GroupRepository) MemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT user_id FROM group_members WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, gerrors.Wrap(err, "list group members")
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *GroupRepository) IsOwnerOrManager(ctx context.Context, email string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM groups WHERE owner_email = $1 OR dbp_manager_email = $1
		)`, email).Scan(&exists)
	if err != nil {
		return false, gerrors.Wrap(err, "check group ownership")
	}
	return exists, nil
}

func scanGroup(row pgx.Row) (group.Group, error) {
	var (
		id                                int64
		name, ownerEmail, dbpManagerEmail *string
	)
	if err := row.Scan(&id, &name, &ownerEmail, &dbpManagerEmail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, err
	}
	return group.Hydrate(id, deref(name), deref(ownerEmail), deref(dbpManagerEmail)), nil
}

func scanGroups(rows pgx.Rows) ([]group.Group, error) {
	var out []group.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
