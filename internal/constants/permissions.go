package constants

const (
	ViewData        = "view_data"
	ManageVehicles  = "manage_vehicles"
	AssignVehicles  = "assign_vehicles"
	ManageTeams     = "manage_teams"
	ManageUsers     = "manage_users"
	IssueMaterials  = "issue_materials"
	ReturnMaterials = "return_materials"
	ManageMaterials = "manage_materials"
	ManagePenalties = "manage_penalties"
	PayPenalties    = "pay_penalties"
	ManageDocuments = "manage_documents"
	ManageExpenses  = "manage_expenses"
	ExportReports   = "export_reports"
)
