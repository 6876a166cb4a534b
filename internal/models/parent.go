package models

import "time"

// Parent represents a guardian; the id is shared with the identity account.
type Parent struct {
	ID         string    `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	Name       string    `db:"name" json:"name"`
	Surname    string    `db:"surname" json:"surname"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Address    string    `db:"address" json:"address"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	StudentIDs []string  `db:"-" json:"studentIds,omitempty"`
}

// ParentRecord is a normalized parent submission including the login password.
type ParentRecord struct {
	Parent
	Password string
}

// ParentPatch carries only the parent fields present in a partial update.
// A non-nil Email or Phone pointing at an empty string clears the stored value.
type ParentPatch struct {
	Username *string
	Password *string
	Name     *string
	Surname  *string
	Email    *string
	Phone    *string
	Address  *string
}

// Empty reports whether the patch changes nothing.
func (p ParentPatch) Empty() bool {
	return p.Username == nil && p.Password == nil && p.Name == nil && p.Surname == nil &&
		p.Email == nil && p.Phone == nil && p.Address == nil
}

// Apply overlays the present fields onto a copy of the parent.
func (p ParentPatch) Apply(parent Parent) Parent {
	if p.Username != nil {
		parent.Username = *p.Username
	}
	if p.Name != nil {
		parent.Name = *p.Name
	}
	if p.Surname != nil {
		parent.Surname = *p.Surname
	}
	if p.Email != nil {
		parent.Email = clearable(*p.Email)
	}
	if p.Phone != nil {
		parent.Phone = clearable(*p.Phone)
	}
	if p.Address != nil {
		parent.Address = *p.Address
	}
	return parent
}

func clearable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
