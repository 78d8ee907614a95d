package domain

// User is a directory entry: a named person holding one approval role.
// The default user of a role receives that role's hand-offs.
type User struct {
	Name      string
	Role      Role
	IsDefault bool
}
