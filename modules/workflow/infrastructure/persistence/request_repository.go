package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/pkg/composables"
)

const selectRequestSQL = `
	SELECT
		r.id, r.request_type, r.status, r.group_id,
		r.new_group_name, r.new_group_owner_email, r.new_group_dbp_manager_email,
		r.requester_email, r.reason, r.summary, r.created_at, r.updated_at,
		COALESCE((SELECT array_agg(d.dataset_id ORDER BY d.dataset_id) FROM request_datasets d WHERE d.request_id = r.id), '{}') AS dataset_ids,
		COALESCE((SELECT array_agg(m.user_id ORDER BY m.user_id) FROM request_members m WHERE m.request_id = r.id), '{}') AS member_ids
	FROM requests r`

const selectApprovalSQL = `
	SELECT id, request_id, approver_role, approval_order, approver_email, approver_name, status, comment, decided_at
	FROM request_approvals`

type RequestRepository struct{}

func NewRequestRepository() request.Repository {
	return &RequestRepository{}
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.Request{}, err
	}
	row := tx.QueryRow(ctx, selectRequestSQL+` WHERE r.id = $1`, id)
	return scanRequest(row)
}

func (r *RequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.Request{}, err
	}
	row := tx.QueryRow(ctx, selectRequestSQL+` WHERE r.id = $1 FOR UPDATE OF r`, id)
	return scanRequest(row)
}

func (r *RequestRepository) GetByRequester(ctx context.Context, requesterEmail string, statuses []request.Status) ([]request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	rows, err := tx.Query(ctx, selectRequestSQL+`
		WHERE r.requester_email = $1 AND r.status = ANY($2)
		ORDER BY r.updated_at DESC, r.id DESC`, requesterEmail, values)
	if err != nil {
		return nil, gerrors.Wrap(err, "list requests by requester")
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *RequestRepository) GetByDBPManager(ctx context.Context, email string) ([]request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectRequestSQL+`
		LEFT JOIN groups g ON r.group_id = g.id
		WHERE r.status <> 'draft'
		  AND (g.dbp_manager_email = $1 OR r.new_group_dbp_manager_email = $1)
		ORDER BY r.updated_at DESC, r.id DESC`, email)
	if err != nil {
		return nil, gerrors.Wrap(err, "list requests by dbp manager")
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *RequestRepository) GetByBusinessOwner(ctx context.Context, email string) ([]request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectRequestSQL+`
		WHERE r.status <> 'draft' AND EXISTS (
			SELECT 1
			FROM request_datasets rd
			JOIN application_datasets ad ON ad.dataset_id = rd.dataset_id
			JOIN applications a ON a.id = ad.application_id
			WHERE rd.request_id = r.id AND a.business_owner_email = $1
		)
		ORDER BY r.updated_at DESC, r.id DESC`, email)
	if err != nil {
		return nil, gerrors.Wrap(err, "list requests by business owner")
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *RequestRepository) Create(ctx context.Context, req request.Request) (request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.Request{}, err
	}
	ng := req.NewGroup()
	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO requests (
			request_type, status, group_id,
			new_group_name, new_group_owner_email, new_group_dbp_manager_email,
			requester_email, reason, summary
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		string(req.Type()), string(req.Status()), nullableID(req.GroupID()),
		nullable(ng.Name), nullable(ng.OwnerEmail), nullable(ng.DBPManagerEmail),
		req.RequesterEmail(), nullable(req.Reason()), nullable(req.Summary()),
	).Scan(&id)
	if err != nil {
		return request.Request{}, gerrors.Wrap(err, "insert request")
	}
	if err := r.replaceJunctions(ctx, id, req.DatasetIDs(), req.MemberIDs()); err != nil {
		return request.Request{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *RequestRepository) Update(ctx context.Context, req request.Request) (request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return request.Request{}, err
	}
	ng := req.NewGroup()
	tag, err := tx.Exec(ctx, `
		UPDATE requests
		SET request_type = $2,
		    group_id = $3,
		    new_group_name = $4,
		    new_group_owner_email = $5,
		    new_group_dbp_manager_email = $6,
		    reason = $7,
		    summary = $8,
		    updated_at = now()
		WHERE id = $1`,
		req.ID(), string(req.Type()), nullableID(req.GroupID()),
		nullable(ng.Name), nullable(ng.OwnerEmail), nullable(ng.DBPManagerEmail),
		nullable(req.Reason()), nullable(req.Summary()),
	)
	if err != nil {
		return request.Request{}, gerrors.Wrap(err, "update request")
	}
	if tag.RowsAffected() == 0 {
		return request.Request{}, request.ErrNotFound
	}
	if err := r.replaceJunctions(ctx, req.ID(), req.DatasetIDs(), req.MemberIDs()); err != nil {
		return request.Request{}, err
	}
	return r.GetByID(ctx, req.ID())
}

func (r *RequestRepository) replaceJunctions(ctx context.Context, requestID int64, datasetIDs, memberIDs []int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM request_datasets WHERE request_id = $1`, requestID); err != nil {
		return gerrors.Wrap(err, "clear request datasets")
	}
	for _, datasetID := range datasetIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO request_datasets (request_id, dataset_id) VALUES ($1, $2)`,
			requestID, datasetID,
		); err != nil {
			return gerrors.Wrap(err, "insert request dataset")
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM request_members WHERE request_id = $1`, requestID); err != nil {
		return gerrors.Wrap(err, "clear request members")
	}
	for _, userID := range memberIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO request_members (request_id, user_id) VALUES ($1, $2)`,
			requestID, userID,
		); err != nil {
			return gerrors.Wrap(err, "insert request member")
		}
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return gerrors.Wrap(err, "delete request")
	}
	if tag.RowsAffected() == 0 {
		return request.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) SetStatus(ctx context.Context, id int64, status request.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE requests SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return gerrors.Wrap(err, "set request status")
	}
	if tag.RowsAffected() == 0 {
		return request.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) Approvals(ctx context.Context, requestID int64) ([]request.Approval, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectApprovalSQL+`
		WHERE request_id = $1
		ORDER BY approval_order ASC, approver_email ASC`, requestID)
	if err != nil {
		return nil, gerrors.Wrap(err, "list approvals")
	}
	defer rows.Close()
	return scanApprovals(rows)
}

func (r *RequestRepository) ReplaceApprovals(ctx context.Context, requestID int64, approvals []request.Approval) ([]request.Approval, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM request_approvals WHERE request_id = $1`, requestID); err != nil {
		return nil, gerrors.Wrap(err, "clear approvals")
	}
	for _, a := range approvals {
		if _, err := tx.Exec(ctx, `
			INSERT INTO request_approvals (request_id, approver_role, approval_order, approver_email, approver_name, status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			requestID, string(a.Role()), a.Order(), a.ApproverEmail(), nullable(a.ApproverName()), string(a.Status()),
		); err != nil {
			return nil, gerrors.Wrap(err, "insert approval")
		}
	}
	return r.Approvals(ctx, requestID)
}

func (r *RequestRepository) SetApprovalDecision(
	ctx context.Context,
	requestID int64,
	role request.Role,
	approverEmail string,
	status request.ApprovalStatus,
	comment string,
) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE request_approvals
		SET status = $4, comment = $5, decided_at = now()
		WHERE request_id = $1 AND approver_role = $2 AND approver_email = $3 AND status = 'pending'`,
		requestID, string(role), approverEmail, string(status), nullable(comment),
	)
	if err != nil {
		return 0, gerrors.Wrap(err, "set approval decision")
	}
	return tag.RowsAffected(), nil
}

func (r *RequestRepository) WithdrawPendingApprovals(ctx context.Context, requestID int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE request_approvals SET status = 'withdrawn' WHERE request_id = $1 AND status = 'pending'`,
		requestID,
	); err != nil {
		return gerrors.Wrap(err, "withdraw pending approvals")
	}
	return nil
}

func (r *RequestRepository) CountPending(ctx context.Context, requestID int64) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM request_approvals WHERE request_id = $1 AND status = 'pending'`,
		requestID,
	).Scan(&count)
	if err != nil {
		return 0, gerrors.Wrap(err, "count pending approvals")
	}
	return count, nil
}

func (r *RequestRepository) PendingForApprover(ctx context.Context, approverEmail string) ([]request.Request, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectRequestSQL+`
		WHERE r.status = 'requested' AND EXISTS (
			SELECT 1 FROM request_approvals a
			WHERE a.request_id = r.id AND a.approver_email = $1 AND a.status = 'pending'
		)
		ORDER BY r.updated_at DESC, r.id DESC`, approverEmail)
	if err != nil {
		return nil, gerrors.Wrap(err, "list pending requests for approver")
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequest(row pgx.Row) (request.Request, error) {
	var (
		id                                              int64
		typ, status, requesterEmail                     string
		groupID                                         *int64
		newGroupName, newGroupOwner, newGroupDBPManager *string
		reason, summaryText                             *string
		createdAt, updatedAt                            time.Time
		datasetIDs, memberIDs                           []int64
	)
	err := row.Scan(
		&id, &typ, &status, &groupID,
		&newGroupName, &newGroupOwner, &newGroupDBPManager,
		&requesterEmail, &reason, &summaryText, &createdAt, &updatedAt,
		&datasetIDs, &memberIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, request.ErrNotFound
		}
		return request.Request{}, err
	}
	parsedType, err := request.ParseType(typ)
	if err != nil {
		return request.Request{}, err
	}
	parsedStatus, err := request.ParseStatus(status)
	if err != nil {
		return request.Request{}, err
	}
	return request.Hydrate(
		id,
		parsedType,
		parsedStatus,
		derefID(groupID),
		request.NewGroup{
			Name:            deref(newGroupName),
			OwnerEmail:      deref(newGroupOwner),
			DBPManagerEmail: deref(newGroupDBPManager),
		},
		datasetIDs,
		memberIDs,
		requesterEmail,
		deref(reason),
		deref(summaryText),
		createdAt,
		updatedAt,
	), nil
}

func scanRequests(rows pgx.Rows) ([]request.Request, error) {
	var out []request.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanApproval(row pgx.Row) (request.Approval, error) {
	var (
		id, requestID       int64
		role, email, status string
		order               int
		name, comment       *string
		decidedAt           *time.Time
	)
	err := row.Scan(&id, &requestID, &role, &order, &email, &name, &status, &comment, &decidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Approval{}, request.ErrNotFound
		}
		return request.Approval{}, err
	}
	return request.HydrateApproval(
		id,
		requestID,
		request.Role(role),
		order,
		email,
		deref(name),
		request.ApprovalStatus(status),
		deref(comment),
		decidedAt,
	), nil
}

func scanApprovals(rows pgx.Rows) ([]request.Approval, error) {
	var out []request.Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
