package enums

import "fmt"

// AccountRole is the back-office role of an admin account.
type AccountRole string

const (
	AccountRoleAdmin     AccountRole = "admin"
	AccountRoleManager   AccountRole = "manager"
	AccountRoleTemporary AccountRole = "temporary"
)

var validAccountRoleValues = []AccountRole{
	AccountRoleAdmin,
	AccountRoleManager,
	AccountRoleTemporary,
}

func (v AccountRole) String() string {
	return string(v)
}

// IsValid reports whether the value is a known account role.
func (v AccountRole) IsValid() bool {
	for _, candidate := range validAccountRoleValues {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseAccountRole converts the raw string to AccountRole.
func ParseAccountRole(value string) (AccountRole, error) {
	for _, candidate := range validAccountRoleValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account role %q", value)
}
