package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
)

// grantTable fake en memoria; cuenta las consultas para verificar que no hay caché.
type grantTable struct {
	rows  map[string]bool
	calls int
	err   error
}

func key(userID string, m access.Module, a access.Action) string {
	return userID + "|" + string(m) + "|" + string(a)
}

func (g *grantTable) FindGrant(_ context.Context, userID string, m access.Module, a access.Action) (bool, bool, error) {
	g.calls++
	if g.err != nil {
		return false, false, g.err
	}
	granted, ok := g.rows[key(userID, m, a)]
	return granted, ok, nil
}

func newUser(id string, role entity.Role) *entity.User {
	return &entity.User{ID: id, Username: id, Role: role, IsActive: true}
}

func TestHasPermission_AdminSiempreTrue(t *testing.T) {
	// Tabla que deniega explícitamente todo al admin: debe ignorarse.
	g := &grantTable{rows: map[string]bool{}}
	admin := newUser("admin-1", entity.RoleAdmin)
	for _, m := range access.Modules {
		for _, a := range access.Actions {
			g.rows[key(admin.ID, m, a)] = false
		}
	}
	r := access.NewResolver(g)
	for _, m := range access.Modules {
		for _, a := range []access.Action{access.ActionView, access.ActionAdd, access.ActionEdit, access.ActionDelete, ""} {
			ok, err := r.HasPermission(context.Background(), admin, m, a)
			require.NoError(t, err)
			assert.True(t, ok, "%s/%s", m, a)
		}
	}
	assert.Zero(t, g.calls, "el admin no consulta la tabla de permisos")
}

func TestHasPermission_DefaultDeny(t *testing.T) {
	r := access.NewResolver(&grantTable{rows: map[string]bool{}})
	for _, role := range []entity.Role{entity.RoleSalesManager, entity.RoleSalesExecutive, entity.RoleOperations, entity.RoleEmployee} {
		u := newUser("u-"+string(role), role)
		for _, m := range access.Modules {
			for _, a := range access.Actions {
				ok, err := r.HasPermission(context.Background(), u, m, a)
				require.NoError(t, err)
				assert.False(t, ok, "%s %s/%s", role, m, a)
			}
		}
	}
}

func TestHasPermission_AccionesIndependientes(t *testing.T) {
	u := newUser("exec-1", entity.RoleSalesExecutive)
	g := &grantTable{rows: map[string]bool{
		key(u.ID, access.ModuleClientManagement, access.ActionEdit): true,
	}}
	r := access.NewResolver(g)
	ctx := context.Background()

	ok, err := r.HasPermission(ctx, u, access.ModuleClientManagement, access.ActionEdit)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.HasPermission(ctx, u, access.ModuleClientManagement, access.ActionView)
	require.NoError(t, err)
	assert.False(t, ok, "EDIT no implica VIEW")

	ok, err = r.HasPermission(ctx, u, access.ModuleClientManagement, access.ActionDelete)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermission_AccionVaciaEsView(t *testing.T) {
	u := newUser("exec-1", entity.RoleSalesExecutive)
	r := access.NewResolver(&grantTable{rows: map[string]bool{
		key(u.ID, access.ModuleReports, access.ActionView): true,
	}})
	ok, err := r.HasPermission(context.Background(), u, access.ModuleReports, "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasPermission_FilaGrantedFalseDeniega(t *testing.T) {
	u := newUser("exec-1", entity.RoleSalesExecutive)
	r := access.NewResolver(&grantTable{rows: map[string]bool{
		key(u.ID, access.ModuleReports, access.ActionView): false,
	}})
	ok, err := r.HasPermission(context.Background(), u, access.ModuleReports, access.ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermission_SeEvaluaEnCadaLlamada(t *testing.T) {
	u := newUser("exec-1", entity.RoleSalesExecutive)
	g := &grantTable{rows: map[string]bool{}}
	r := access.NewResolver(g)
	ctx := context.Background()

	ok, _ := r.HasPermission(ctx, u, access.ModuleUserManagement, access.ActionView)
	assert.False(t, ok)

	g.rows[key(u.ID, access.ModuleUserManagement, access.ActionView)] = true
	ok, _ = r.HasPermission(ctx, u, access.ModuleUserManagement, access.ActionView)
	assert.True(t, ok, "el cambio de permisos se ve en la siguiente llamada")

	delete(g.rows, key(u.ID, access.ModuleUserManagement, access.ActionView))
	ok, _ = r.HasPermission(ctx, u, access.ModuleUserManagement, access.ActionView)
	assert.False(t, ok)
	assert.Equal(t, 3, g.calls)
}

func TestHasPermission_UsuarioInactivo(t *testing.T) {
	u := newUser("exec-1", entity.RoleSalesExecutive)
	u.IsActive = false
	r := access.NewResolver(&grantTable{rows: map[string]bool{
		key(u.ID, access.ModuleDashboard, access.ActionView): true,
	}})
	ok, err := r.HasPermission(context.Background(), u, access.ModuleDashboard, access.ActionView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequire_Errores(t *testing.T) {
	u := newUser("exec-1", entity.RoleSalesExecutive)
	ctx := context.Background()

	r := access.NewResolver(&grantTable{rows: map[string]bool{}})
	assert.ErrorIs(t, r.Require(ctx, nil, access.ModuleDashboard, access.ActionView), domain.ErrUnauthorized)
	assert.ErrorIs(t, r.Require(ctx, u, access.ModuleDashboard, access.ActionView), domain.ErrForbidden)

	boom := errors.New("db caída")
	r = access.NewResolver(&grantTable{err: boom})
	err := r.Require(ctx, u, access.ModuleDashboard, access.ActionView)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
}

func TestParseModuleYAction(t *testing.T) {
	m, ok := access.ParseModule(" client_management ")
	assert.True(t, ok)
	assert.Equal(t, access.ModuleClientManagement, m)

	_, ok = access.ParseModule("PAYROLL")
	assert.False(t, ok)

	a, ok := access.ParseAction("")
	assert.True(t, ok)
	assert.Equal(t, access.ActionView, a)

	_, ok = access.ParseAction("approve")
	assert.False(t, ok)
}

func TestDefaultGrants(t *testing.T) {
	assert.Empty(t, access.DefaultGrants(entity.RoleAdmin))

	exec := access.DefaultGrants(entity.RoleSalesExecutive)
	require.NotEmpty(t, exec)
	for _, g := range exec {
		assert.True(t, g.Granted)
		assert.NotEqual(t, access.ModuleUserManagement, g.Module, "un ejecutivo no gestiona usuarios")
	}
	assert.Contains(t, exec, access.Grant{Module: access.ModuleClientManagement, Action: access.ActionAdd, Granted: true})
}
