package request

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dbp-hq/governance/pkg/constants"
	"github.com/dbp-hq/governance/pkg/serrors"
)

// UpsertDTO is the wire shape shared by draft saves, previews,
// submissions and post-submission updates. An empty type means a
// dataset access request.
type UpsertDTO struct {
	ID                   int64   `json:"id"`
	Type                 string  `json:"type"`
	GroupID              int64   `json:"group_id"`
	GroupName            string  `json:"group_name"`
	GroupOwnerEmail      string  `json:"group_owner_email"`
	GroupDBPManagerEmail string  `json:"group_dbp_manager_email"`
	DatasetIDs           []int64 `json:"dataset_ids"`
	MemberIDs            []int64 `json:"member_ids"`
	RequesterEmail       string  `json:"requester_email" validate:"required,email"`
	Reason               string  `json:"reason"`
}

func (d *UpsertDTO) Normalize() {
	d.Type = strings.TrimSpace(d.Type)
	d.GroupName = strings.TrimSpace(d.GroupName)
	d.GroupOwnerEmail = strings.TrimSpace(d.GroupOwnerEmail)
	d.GroupDBPManagerEmail = strings.TrimSpace(d.GroupDBPManagerEmail)
	d.RequesterEmail = strings.TrimSpace(d.RequesterEmail)
	d.Reason = strings.TrimSpace(d.Reason)
}

func (d *UpsertDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()

	validationErrors := make(serrors.ValidationErrors)
	if _, err := ParseType(d.Type); err != nil {
		validationErrors["Type"] = serrors.NewValidationError("Type", err.Error())
	}

	if errs := constants.Validate.Struct(d); errs != nil {
		for field, err := range serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), func(string) string { return "" }) {
			validationErrors[field] = err
		}
	}

	return validationErrors, len(validationErrors) == 0
}

// ToEntity maps the DTO onto a draft aggregate. Callers decide whether
// the result is saved as a draft or validated further for submission.
func (d *UpsertDTO) ToEntity() Request {
	typ, err := ParseType(d.Type)
	if err != nil {
		typ = Type(d.Type)
	}
	return New(typ, d.RequesterEmail).
		WithID(d.ID).
		WithGroupID(d.GroupID).
		WithNewGroup(NewGroup{
			Name:            d.GroupName,
			OwnerEmail:      d.GroupOwnerEmail,
			DBPManagerEmail: d.GroupDBPManagerEmail,
		}).
		WithDatasetIDs(d.DatasetIDs).
		WithMemberIDs(d.MemberIDs).
		WithReason(d.Reason)
}

// DecisionDTO carries an approve or reject action.
type DecisionDTO struct {
	ApproverEmail string `json:"approver_email" validate:"required,email"`
	Comment       string `json:"comment"`
}

func (d *DecisionDTO) Normalize() {
	d.ApproverEmail = strings.TrimSpace(d.ApproverEmail)
	d.Comment = strings.TrimSpace(d.Comment)
}

func (d *DecisionDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	validationErrors := make(serrors.ValidationErrors)
	if errs := constants.Validate.Struct(d); errs != nil {
		for field, err := range serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), func(string) string { return "" }) {
			validationErrors[field] = err
		}
	}
	return validationErrors, len(validationErrors) == 0
}

// ActorDTO carries the acting requester for withdraw and delete calls.
type ActorDTO struct {
	RequesterEmail string `json:"requester_email" validate:"required,email"`
}

func (d *ActorDTO) Normalize() {
	d.RequesterEmail = strings.TrimSpace(d.RequesterEmail)
}

func (d *ActorDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	validationErrors := make(serrors.ValidationErrors)
	if errs := constants.Validate.Struct(d); errs != nil {
		for field, err := range serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), func(string) string { return "" }) {
			validationErrors[field] = err
		}
	}
	return validationErrors, len(validationErrors) == 0
}
