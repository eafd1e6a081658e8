package models

import "strings"

// Contact is one externally supplied entry of an import-friends request.
// Empty strings mean the field was not supplied.
type Contact struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func (contact Contact) HasEmail() bool {
	return strings.TrimSpace(contact.Email) != ""
}

func (contact Contact) HasName() bool {
	return strings.TrimSpace(contact.FirstName) != "" || strings.TrimSpace(contact.LastName) != ""
}

func (contact Contact) Empty() bool {
	return !contact.HasEmail() && !contact.HasName()
}
