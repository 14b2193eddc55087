package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
	"github.com/dbp-hq/governance/pkg/composables"
)

const (
	selectDatasetSQL = `
		SELECT id, dataset_code, dataset_name
		FROM datasets`
)

type DatasetRepository struct{}

func NewDatasetRepository() dataset.Repository {
	return &DatasetRepository{}
}

func (r *DatasetRepository) GetAll(ctx context.Context) ([]dataset.Dataset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectDatasetSQL+` ORDER BY dataset_name ASC`)
	if err != nil {
		return nil, gerrors.Wrap(err, "list datasets")
	}
	defer rows.Close()
	return scanDatasets(rows)
}

func (r *DatasetRepository) GetByID(ctx context.Context, id int64) (dataset.Dataset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return dataset.Dataset{}, err
	}
	row := tx.QueryRow(ctx, selectDatasetSQL+` WHERE id = $1`, id)
	return scanDataset(row)
}

func (r *DatasetRepository) GetByIDs(ctx context.Context, ids []int64) ([]dataset.Dataset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectDatasetSQL+` WHERE id = ANY($1) ORDER BY dataset_name ASC`, ids)
	if err != nil {
		return nil, gerrors.Wrap(err, "list datasets by ids")
	}
	defer rows.Close()
	return scanDatasets(rows)
}

func (r *DatasetRepository) AccessibleByGroup(ctx context.Context, groupID int64) ([]dataset.Dataset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT d.id, d.dataset_code, d.dataset_name
		FROM datasets d
		JOIN group_datasets gd ON d.id = gd.dataset_id
		WHERE gd.group_id = $1
		ORDER BY d.dataset_name ASC`, groupID)
	if err != nil {
		return nil, gerrors.Wrap(err, "list accessible datasets")
	}
	defer rows.Close()
	return scanDatasets(rows)
}

func (r *DatasetRepository) AvailableForGroup(ctx context.Context, groupID int64) ([]dataset.Dataset, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT d.id, d.dataset_code, d.dataset_name
		FROM datasets d
		WHERE NOT EXISTS (
			SELECT 1 FROM group_datasets gd
			WHERE gd.dataset_id = d.id AND gd.group_id = $1
		)
		ORDER BY d.dataset_name ASC`, groupID)
	if err != nil {
		return nil, gerrors.Wrap(err, "list available datasets")
	}
	defer rows.Close()
	return scanDatasets(rows)
}

func scanDataset(row pgx.Row) (dataset.Dataset, error) {
	var (
		id         int64
		code, name *string
	)
	if err := row.Scan(&id, &code, &name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dataset.Dataset{}, dataset.ErrNotFound
		}
		return dataset.Dataset{}, err
	}
	return dataset.Hydrate(id, deref(code), deref(name)), nil
}

func scanDatasets(rows pgx.Rows) ([]dataset.Dataset, error) {
	var out []dataset.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
