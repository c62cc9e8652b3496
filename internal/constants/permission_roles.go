package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:        {Worker, TeamLead, Manager, Admin, Owner},
	ManageVehicles:  {Manager, Admin, Owner},
	AssignVehicles:  {Manager, Admin, Owner},
	ManageTeams:     {Manager, Admin, Owner},
	ManageUsers:     {Admin, Owner},
	IssueMaterials:  {TeamLead, Manager, Admin, Owner},
	ReturnMaterials: {TeamLead, Manager, Admin, Owner},
	ManageMaterials: {Manager, Admin, Owner},
	ManagePenalties: {Manager, Admin, Owner},
	PayPenalties:    {Manager, Admin, Owner},
	ManageDocuments: {TeamLead, Manager, Admin, Owner},
	ManageExpenses:  {Manager, Admin, Owner},
	ExportReports:   {Manager, Admin, Owner},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
