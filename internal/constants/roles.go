package constants

const (
	Owner    = "owner"
	Admin    = "admin"
	Manager  = "manager"
	TeamLead = "team_lead"
	Worker   = "worker"
)

// ValidRoles is the set of allowed DB enum values for user role.
var ValidRoles = []string{Owner, Admin, Manager, TeamLead, Worker}

// IsValidRole returns true if role is one of the allowed enum values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
