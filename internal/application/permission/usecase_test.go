package permission_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitumen-api/internal/application/dto"
	"github.com/jhoicas/bitumen-api/internal/application/permission"
	"github.com/jhoicas/bitumen-api/internal/domain"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/memory"
)

type fixture struct {
	uc    *permission.PermissionUseCase
	admin *entity.User
	sales *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewStore().Repos()
	ctx := context.Background()
	admin := &entity.User{ID: uuid.New().String(), Username: "admin", Name: "Admin", Role: entity.RoleAdmin, IsActive: true}
	sales := &entity.User{ID: uuid.New().String(), Username: "priya", Name: "Priya", Role: entity.RoleSalesExecutive, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, admin))
	require.NoError(t, repos.Users.Create(ctx, sales))
	require.NoError(t, repos.Permissions.ReplaceForUser(ctx, sales.ID, []access.Grant{
		{Module: access.ModuleClientManagement, Action: access.ActionView, Granted: true},
		{Module: access.ModuleOrderWorkflow, Action: access.ActionView, Granted: false},
	}))
	resolver := access.NewResolver(repos.Permissions)
	return &fixture{
		uc:    permission.NewPermissionUseCase(repos.Users, repos.Permissions, resolver),
		admin: admin,
		sales: sales,
	}
}

func granted(b bool) *bool { return &b }

func TestMyPermissions_SoloFilasConcedidas(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.MyPermissions(context.Background(), f.sales)
	require.NoError(t, err)
	assert.False(t, out.IsAdmin)
	assert.Equal(t, []access.Grant{{Module: access.ModuleClientManagement, Action: access.ActionView, Granted: true}}, out.Grants)

	_, err = f.uc.MyPermissions(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMyPermissions_AdminTieneTodo(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.MyPermissions(context.Background(), f.admin)
	require.NoError(t, err)
	assert.True(t, out.IsAdmin)
	assert.Equal(t, access.AllGranted(), out.Grants)
}

func TestListForUser_RequiereUserManagementView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.ListForUser(ctx, f.sales, f.admin.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.ListForUser(ctx, f.admin, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	out, err := f.uc.ListForUser(ctx, f.admin, f.sales.ID)
	require.NoError(t, err)
	assert.Equal(t, f.sales.ID, out.UserID)
}

func TestSetForUser_ReemplazaElConjunto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.SetForUser(ctx, f.admin, f.sales.ID, dto.SetPermissionsRequest{Grants: []dto.GrantRequest{
		{Module: "CREDIT_PAYMENTS", Action: "EDIT"},
		{Module: "task_management", Action: "VIEW", Granted: granted(false)},
	}})
	require.NoError(t, err)
	// CLIENT_MANAGEMENT desaparece; granted ausente cuenta como true; false no se lista.
	assert.Equal(t, []access.Grant{{Module: access.ModuleCreditPayments, Action: access.ActionEdit, Granted: true}}, out.Grants)
}

func TestSetForUser_Rechazos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.SetForUser(ctx, f.sales, f.sales.ID, dto.SetPermissionsRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden, "nadie se concede permisos sin USER_MANAGEMENT/EDIT")

	_, err = f.uc.SetForUser(ctx, f.admin, f.sales.ID, dto.SetPermissionsRequest{Grants: []dto.GrantRequest{
		{Module: "INVENTORY", Action: "VIEW"},
		{Module: "CLIENT_MANAGEMENT", Action: "APPROVE"},
	}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "grants[0].module")
	assert.Contains(t, verr.Fields, "grants[1].action")

	_, err = f.uc.SetForUser(ctx, f.admin, f.sales.ID, dto.SetPermissionsRequest{Grants: []dto.GrantRequest{
		{Module: "CLIENT_MANAGEMENT", Action: "VIEW"},
		{Module: "CLIENT_MANAGEMENT", Action: "VIEW", Granted: granted(false)},
	}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "grants[1]")

	// Un rechazo no toca la matriz existente.
	out, err := f.uc.MyPermissions(ctx, f.sales)
	require.NoError(t, err)
	assert.Len(t, out.Grants, 1)
}
