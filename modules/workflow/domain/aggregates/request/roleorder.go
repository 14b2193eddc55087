package request

// Role names an approval tier in a request's chain. Tiers are processed
// in ascending order and a tier may only act once every earlier tier has
// fully approved.
type Role string

const (
	RoleGroupOwner  Role = "group_owner"
	RoleDataManager Role = "data_manager"
	RoleAppOwner    Role = "app_owner"
)

var datasetRoleOrder = []Role{RoleGroupOwner, RoleDataManager, RoleAppOwner}

var groupRoleOrder = []Role{RoleGroupOwner, RoleDataManager}

// RoleOrder returns the approval tiers for a request type, earliest first.
func RoleOrder(t Type) []Role {
	if t.IsDatasetType() {
		return datasetRoleOrder
	}
	return groupRoleOrder
}

// RoleRank returns the 1-based tier of role within the chain for a
// request type, or 0 when the role does not participate.
func RoleRank(t Type, role Role) int {
	for i, r := range RoleOrder(t) {
		if r == role {
			return i + 1
		}
	}
	return 0
}
