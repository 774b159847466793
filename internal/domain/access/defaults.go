package access

import "github.com/jhoicas/bitumen-api/internal/domain/entity"

var (
	viewOnly    = []Action{ActionView}
	viewAdd     = []Action{ActionView, ActionAdd}
	viewEdit    = []Action{ActionView, ActionEdit}
	viewAddEdit = []Action{ActionView, ActionAdd, ActionEdit}
)

// roleTemplates plantilla de permisos que recibe un usuario nuevo según su rol.
// ADMIN no necesita filas: el resolver lo deja pasar siempre.
var roleTemplates = map[entity.Role]map[Module][]Action{
	entity.RoleSalesManager: {
		ModuleDashboard:        viewOnly,
		ModuleClientManagement: viewAddEdit,
		ModuleOrderWorkflow:    viewAddEdit,
		ModuleCreditPayments:   viewAddEdit,
		ModuleFollowUps:        viewAddEdit,
		ModuleTaskManagement:   viewAddEdit,
		ModuleTourAdvances:     viewAddEdit,
		ModuleReports:          viewOnly,
	},
	entity.RoleSalesExecutive: {
		ModuleDashboard:        viewOnly,
		ModuleClientManagement: viewAddEdit,
		ModuleFollowUps:        viewAddEdit,
		ModuleTaskManagement:   viewEdit,
		ModuleTourAdvances:     viewAdd,
		ModuleOrderWorkflow:    viewAdd,
	},
	entity.RoleOperations: {
		ModuleDashboard:      viewOnly,
		ModuleOrderWorkflow:  viewEdit,
		ModuleEWayBills:      viewAddEdit,
		ModuleTaskManagement: viewEdit,
		ModuleTallySync:      viewOnly,
	},
	entity.RoleEmployee: {
		ModuleDashboard:      viewOnly,
		ModuleTaskManagement: viewEdit,
		ModuleTourAdvances:   viewAdd,
	},
}

// DefaultGrants devuelve las filas de permiso iniciales para un rol, en el orden de Modules/Actions.
func DefaultGrants(role entity.Role) []Grant {
	tpl := roleTemplates[role]
	if len(tpl) == 0 {
		return nil
	}
	var out []Grant
	for _, m := range Modules {
		for _, a := range Actions {
			for _, allowed := range tpl[m] {
				if allowed == a {
					out = append(out, Grant{Module: m, Action: a, Granted: true})
				}
			}
		}
	}
	return out
}
