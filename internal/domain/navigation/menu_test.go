package navigation_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/entity"
	"github.com/jhoicas/bitumen-api/internal/domain/navigation"
)

type viewSet map[access.Module]bool

func (v viewSet) CanView(_ context.Context, _ *entity.User, m access.Module) (bool, error) {
	return v[m], nil
}

type failingChecker struct{}

func (failingChecker) CanView(context.Context, *entity.User, access.Module) (bool, error) {
	return false, errors.New("db caída")
}

var (
	exec  = &entity.User{ID: "u1", Role: entity.RoleSalesExecutive, IsActive: true}
	admin = &entity.User{ID: "a1", Role: entity.RoleAdmin, IsActive: true}
)

func TestDefaultMenu_Carga(t *testing.T) {
	m, err := navigation.DefaultMenu()
	require.NoError(t, err)
	assert.NotEmpty(t, m.Items)
	assert.NotEmpty(t, m.Sections)
}

func TestParse_ModuloDesconocido(t *testing.T) {
	_, err := navigation.Parse([]byte("items:\n  - id: x\n    label: X\n    path: /x\n    module: PAYROLL\n"))
	assert.Error(t, err)
}

func TestFilter_AdminVeTodo(t *testing.T) {
	m, err := navigation.DefaultMenu()
	require.NoError(t, err)
	got, err := navigation.Filter(context.Background(), m, admin, viewSet{})
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestFilter_SinPermisosSoloItemsSinModulo(t *testing.T) {
	m, err := navigation.DefaultMenu()
	require.NoError(t, err)
	got, err := navigation.Filter(context.Background(), m, exec, viewSet{})
	require.NoError(t, err)

	for _, it := range got.Items {
		assert.Empty(t, it.Module)
	}
	// Solo sobrevive la sección de soporte (Help no declara módulo).
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "Support", got.Sections[0].Title)
}

func TestFilter_SeccionVaciaDesaparece(t *testing.T) {
	m := navigation.Menu{
		Sections: []navigation.Section{
			{Title: "Admin", Items: []navigation.Item{{ID: "users", Module: access.ModuleUserManagement}}},
			{Title: "Sales", Items: []navigation.Item{
				{ID: "clients", Module: access.ModuleClientManagement},
				{ID: "orders", Module: access.ModuleOrderWorkflow},
			}},
		},
	}
	got, err := navigation.Filter(context.Background(), m, exec, viewSet{access.ModuleOrderWorkflow: true})
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "Sales", got.Sections[0].Title)
	assert.Equal(t, []navigation.Item{{ID: "orders", Module: access.ModuleOrderWorkflow}}, got.Sections[0].Items)
}

func TestFilter_PropagaErrorDelChecker(t *testing.T) {
	m, err := navigation.DefaultMenu()
	require.NoError(t, err)
	_, err = navigation.Filter(context.Background(), m, exec, failingChecker{})
	assert.Error(t, err)
}

// Propiedad: para árboles y permisos aleatorios, todo ítem que queda es visible,
// toda sección que queda tiene al menos un ítem, y el orden relativo se preserva.
func TestFilter_Propiedades(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomItem := func(id string) navigation.Item {
		it := navigation.Item{ID: id}
		if rng.Intn(4) > 0 {
			it.Module = access.Modules[rng.Intn(len(access.Modules))]
		}
		return it
	}

	for round := 0; round < 200; round++ {
		var m navigation.Menu
		for i := 0; i < rng.Intn(5); i++ {
			m.Items = append(m.Items, randomItem(fmt.Sprintf("top-%d", i)))
		}
		for s := 0; s < rng.Intn(5); s++ {
			sec := navigation.Section{Title: fmt.Sprintf("sec-%d", s)}
			for i := 0; i < rng.Intn(5); i++ {
				sec.Items = append(sec.Items, randomItem(fmt.Sprintf("sec-%d-%d", s, i)))
			}
			m.Sections = append(m.Sections, sec)
		}
		perms := viewSet{}
		for _, mod := range access.Modules {
			perms[mod] = rng.Intn(2) == 0
		}

		got, err := navigation.Filter(context.Background(), m, exec, perms)
		require.NoError(t, err)

		for _, it := range got.Items {
			assert.True(t, it.Module == "" || perms[it.Module])
		}
		assertSubsequence(t, idsOf(m.Items), idsOf(got.Items))

		var srcTitles, gotTitles []string
		for _, s := range m.Sections {
			srcTitles = append(srcTitles, s.Title)
		}
		for _, s := range got.Sections {
			gotTitles = append(gotTitles, s.Title)
			assert.NotEmpty(t, s.Items, "sección %s sin ítems", s.Title)
			for _, it := range s.Items {
				assert.True(t, it.Module == "" || perms[it.Module])
			}
			for _, orig := range m.Sections {
				if orig.Title == s.Title {
					assertSubsequence(t, idsOf(orig.Items), idsOf(s.Items))
				}
			}
		}
		assertSubsequence(t, srcTitles, gotTitles)
	}
}

func idsOf(items []navigation.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// assertSubsequence verifica que sub aparece en src en el mismo orden relativo.
func assertSubsequence(t *testing.T, src, sub []string) {
	t.Helper()
	i := 0
	for _, s := range src {
		if i < len(sub) && sub[i] == s {
			i++
		}
	}
	assert.Equal(t, len(sub), i, "orden no preservado: %v no es subsecuencia de %v", sub, src)
}
