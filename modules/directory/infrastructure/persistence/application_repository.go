package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/pkg/composables"
)

const (
	selectApplicationSQL = `
		SELECT id, application_code, application_name, owner_email, business_owner_email
		FROM applications`
)

type ApplicationRepository struct{}

func NewApplicationRepository() application.Repository {
	return &ApplicationRepository{}
}

func (r *ApplicationRepository) GetAll(ctx context.Context) ([]application.Application, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectApplicationSQL+` ORDER BY application_name ASC`)
	if err != nil {
		return nil, gerrors.Wrap(err, "list applications")
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (application.Application, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return application.Application{}, err
	}
	row := tx.QueryRow(ctx, selectApplicationSQL+` WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) ForDatasets(ctx context.Context, datasetIDs []int64) ([]application.Application, error) {
	if len(datasetIDs) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT DISTINCT a.id, a.application_code, a.application_name, a.owner_email, a.business_owner_email
		FROM applications a
		JOIN application_datasets ad ON a.id = ad.application_id
		WHERE ad.dataset_id = ANY($1)
		ORDER BY a.application_name ASC`, datasetIDs)
	if err != nil {
		return nil, gerrors.Wrap(err, "list applications for datasets")
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *ApplicationRepository) IsOwner(ctx context.Context, email string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE owner_email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, gerrors.Wrap(err, "check application ownership")
	}
	return exists, nil
}

func scanApplication(row pgx.Row) (application.Application, error) {
	var (
		id                                    int64
		code, name, ownerEmail, businessEmail *string
	)
	if err := row.Scan(&id, &code, &name, &ownerEmail, &businessEmail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return application.Hydrate(id, deref(code), deref(name), deref(ownerEmail), deref(businessEmail)), nil
}

func scanApplications(rows pgx.Rows) ([]application.Application, error) {
	var out []application.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
