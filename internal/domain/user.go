package domain

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Image     string    `json:"image,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPassword is false for accounts created through an identity provider.
func (u User) HasPassword() bool {
	return u.Password != ""
}

// Identity is the authenticated caller as carried by the session token. A nil
// *Identity means the request is anonymous.
type Identity struct {
	UserID string
	Role   Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// FederatedUser is what an identity provider tells us about a user after a
// successful OAuth exchange.
type FederatedUser struct {
	Provider string
	Email    string
	Name     string
	Image    string
}

type Profile struct {
	User
	OrganizedEvents []Event    `json:"events"`
	Interests       []Interest `json:"interested_in"`
}

type UserEvents struct {
	OrganizedEvents  []Event    `json:"organized_events"`
	InterestedEvents []Interest `json:"interested_events"`
}
