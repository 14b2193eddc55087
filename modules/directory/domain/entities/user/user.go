package user

import "strings"

// User is a read-only view of a person in the organization directory.
// EmployeeCode is the HR identifier, Username the analytics platform login.
type User struct {
	id           int64
	employeeCode string
	name         string
	email        string
	username     string
}

func Hydrate(id int64, employeeCode, name, email, username string) User {
	return User{
		id:           id,
		employeeCode: strings.TrimSpace(employeeCode),
		name:         strings.TrimSpace(name),
		email:        strings.TrimSpace(email),
		username:     strings.TrimSpace(username),
	}
}

func (u User) ID() int64            { return u.id }
func (u User) EmployeeCode() string { return u.employeeCode }
func (u User) Name() string         { return u.name }
func (u User) Email() string        { return u.email }
func (u User) Username() string     { return u.username }
func (u User) IsZero() bool         { return u.id == 0 && u.email == "" }

// DisplayHandle is the identifier recorded as the requester on a request;
// the platform username wins over the display name.
func (u User) DisplayHandle() string {
	if u.username != "" {
		return u.username
	}
	return u.name
}
