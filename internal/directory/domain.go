package directory

import "time"

// Role is the two-valued role set for directory accounts.
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// UserRecord represents a directory account. ID and ExternalID are immutable;
// ExternalID is the identity provider's key and uniquely determines the record.
type UserRecord struct {
	ID          string    `json:"id"`
	ExternalID  string    `json:"externalId"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Description string    `json:"description,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Patch is a partial update. Only the five mutable fields are representable;
// id and external id cannot travel through this path. ExpectedUpdatedAt, when
// set, makes the update conditional on the stored row not having moved.
type Patch struct {
	FirstName   *string `validate:"omitempty,max=120"`
	LastName    *string `validate:"omitempty,max=120"`
	Email       *string `validate:"omitempty,email"`
	Role        *Role   `validate:"omitempty,oneof=MEMBER ADMIN"`
	Description *string `validate:"omitempty,max=2000"`

	ExpectedUpdatedAt *time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Role == nil && p.Description == nil
}

// IdentityProfile is the provider-supplied shape of a first-seen identity.
type IdentityProfile struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	ImageURL   string
}
