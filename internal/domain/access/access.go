// Package access contiene el vocabulario cerrado de módulos y acciones y la regla
// de autorización por usuario/módulo/acción.
//
// Regla:
//   - ADMIN siempre tiene permiso.
//   - Para el resto, decide la fila (usuario, módulo, acción) de user_permissions.
//   - Si la fila no existe, se deniega (default-deny).
//   - Cada acción es independiente: EDIT no implica VIEW.
package access

import "strings"

// Module área funcional de la aplicación; unidad de permiso y de agrupación del menú.
type Module string

const (
	ModuleDashboard        Module = "DASHBOARD"
	ModuleClientManagement Module = "CLIENT_MANAGEMENT"
	ModuleOrderWorkflow    Module = "ORDER_WORKFLOW"
	ModuleCreditPayments   Module = "CREDIT_PAYMENTS"
	ModuleTaskManagement   Module = "TASK_MANAGEMENT"
	ModuleFollowUps        Module = "FOLLOW_UPS"
	ModuleTourAdvances     Module = "TOUR_ADVANCES"
	ModuleEWayBills        Module = "EWAY_BILLS"
	ModuleReports          Module = "REPORTS"
	ModuleTallySync        Module = "TALLY_SYNC"
	ModuleUserManagement   Module = "USER_MANAGEMENT"
)

// Modules lista cerrada de módulos.
var Modules = []Module{
	ModuleDashboard,
	ModuleClientManagement,
	ModuleOrderWorkflow,
	ModuleCreditPayments,
	ModuleTaskManagement,
	ModuleFollowUps,
	ModuleTourAdvances,
	ModuleEWayBills,
	ModuleReports,
	ModuleTallySync,
	ModuleUserManagement,
}

// Valid informa si m pertenece a la lista cerrada.
func (m Module) Valid() bool {
	for _, v := range Modules {
		if v == m {
			return true
		}
	}
	return false
}

// ParseModule normaliza y valida un nombre de módulo ("client_management" → CLIENT_MANAGEMENT).
func ParseModule(s string) (Module, bool) {
	m := Module(strings.ToUpper(strings.TrimSpace(s)))
	return m, m.Valid()
}

// Action acción sobre un módulo.
type Action string

const (
	ActionView   Action = "VIEW"
	ActionAdd    Action = "ADD"
	ActionEdit   Action = "EDIT"
	ActionDelete Action = "DELETE"
)

// Actions lista cerrada de acciones.
var Actions = []Action{ActionView, ActionAdd, ActionEdit, ActionDelete}

// Valid informa si a pertenece a la lista cerrada.
func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionAdd, ActionEdit, ActionDelete:
		return true
	}
	return false
}

// ParseAction normaliza una acción; vacío equivale a VIEW.
func ParseAction(s string) (Action, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ActionView, true
	}
	a := Action(s)
	return a, a.Valid()
}

// Grant autorización (o denegación explícita) de una acción sobre un módulo.
type Grant struct {
	Module  Module `json:"module"`
	Action  Action `json:"action"`
	Granted bool   `json:"granted"`
}

// AllGranted devuelve todas las combinaciones módulo/acción concedidas (vista de un ADMIN).
func AllGranted() []Grant {
	out := make([]Grant, 0, len(Modules)*len(Actions))
	for _, m := range Modules {
		for _, a := range Actions {
			out = append(out, Grant{Module: m, Action: a, Granted: true})
		}
	}
	return out
}
