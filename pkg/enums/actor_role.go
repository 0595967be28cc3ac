package enums

import "fmt"

// ActorRole distinguishes the two portal identities.
type ActorRole string

const (
	ActorRoleCustomer ActorRole = "customer"
	ActorRolePartner  ActorRole = "partner"
)

var validActorRoles = []ActorRole{
	ActorRoleCustomer,
	ActorRolePartner,
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
