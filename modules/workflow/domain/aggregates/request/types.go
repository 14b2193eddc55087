package request

import (
	"fmt"
)

// Type identifies what a request asks for. The zero value on the wire
// (an empty string) is treated as a dataset access request, which is
// how rows created before typed requests existed are interpreted.
type Type string

const (
	TypeDatasetAccess       Type = "dataset_access"
	TypeRemoveDatasetAccess Type = "remove_dataset_access"
	TypeAddMembers          Type = "add_members"
	TypeRemoveMembers       Type = "remove_members"
	TypeCreateGroup         Type = "create_group"
	TypeRemoveGroup         Type = "remove_group"
)

func ParseType(value string) (Type, error) {
	switch value {
	case "", string(TypeDatasetAccess):
		return TypeDatasetAccess, nil
	case string(TypeRemoveDatasetAccess):
		return TypeRemoveDatasetAccess, nil
	case string(TypeAddMembers):
		return TypeAddMembers, nil
	case string(TypeRemoveMembers):
		return TypeRemoveMembers, nil
	case string(TypeCreateGroup):
		return TypeCreateGroup, nil
	case string(TypeRemoveGroup):
		return TypeRemoveGroup, nil
	default:
		return "", fmt.Errorf("unknown request type: %q", value)
	}
}

// IsDatasetType reports whether the request concerns dataset grants.
// Dataset requests carry an extra approval tier for application owners.
func (t Type) IsDatasetType() bool {
	return t == TypeDatasetAccess || t == TypeRemoveDatasetAccess
}

// TargetsExistingGroup reports whether the request operates on a group
// that already exists in the directory.
func (t Type) TargetsExistingGroup() bool {
	return t != TypeCreateGroup
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

func ParseStatus(value string) (Status, error) {
	switch value {
	case string(StatusDraft):
		return StatusDraft, nil
	case string(StatusRequested):
		return StatusRequested, nil
	case string(StatusApproved):
		return StatusApproved, nil
	case string(StatusRejected):
		return StatusRejected, nil
	case string(StatusWithdrawn):
		return StatusWithdrawn, nil
	default:
		return "", fmt.Errorf("unknown request status: %q", value)
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusWithdrawn
}
