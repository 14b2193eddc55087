package application

import "strings"

// Application is a downstream application consuming one or more datasets.
// The owner approves dataset access requests, the business owner is
// notified but never gates approval.
type Application struct {
	id                 int64
	code               string
	name               string
	ownerEmail         string
	businessOwnerEmail string
}

func Hydrate(id int64, code, name, ownerEmail, businessOwnerEmail string) Application {
	return Application{
		id:                 id,
		code:               strings.TrimSpace(code),
		name:               strings.TrimSpace(name),
		ownerEmail:         strings.TrimSpace(ownerEmail),
		businessOwnerEmail: strings.TrimSpace(businessOwnerEmail),
	}
}

func (a Application) ID() int64                  { return a.id }
func (a Application) Code() string               { return a.code }
func (a Application) Name() string               { return a.name }
func (a Application) OwnerEmail() string         { return a.ownerEmail }
func (a Application) BusinessOwnerEmail() string { return a.businessOwnerEmail }
func (a Application) HasOwner() bool             { return a.ownerEmail != "" }
func (a Application) IsZero() bool               { return a.id == 0 && a.code == "" }
