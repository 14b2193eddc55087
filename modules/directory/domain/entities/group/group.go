package group

import "strings"

// Group is an access group in the analytics platform. Owner and DBP manager
// are stored as directory emails and may be unset.
type Group struct {
	id              int64
	name            string
	ownerEmail      string
	dbpManagerEmail string
}

func Hydrate(id int64, name, ownerEmail, dbpManagerEmail string) Group {
	return Group{
		id:              id,
		name:            strings.TrimSpace(name),
		ownerEmail:      strings.TrimSpace(ownerEmail),
		dbpManagerEmail: strings.TrimSpace(dbpManagerEmail),
	}
}

func (g Group) ID() int64               { return g.id }
func (g Group) Name() string            { return g.name }
func (g Group) OwnerEmail() string      { return g.ownerEmail }
func (g Group) DBPManagerEmail() string { return g.dbpManagerEmail }
func (g Group) HasOwner() bool          { return g.ownerEmail != "" }
func (g Group) HasDBPManager() bool     { return g.dbpManagerEmail != "" }
func (g Group) IsZero() bool            { return g.id == 0 && g.name == "" }
