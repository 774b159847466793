package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/bitumen-api/internal/application/auth"
	"github.com/jhoicas/bitumen-api/internal/application/crm"
	"github.com/jhoicas/bitumen-api/internal/application/dashboard"
	"github.com/jhoicas/bitumen-api/internal/application/permission"
	"github.com/jhoicas/bitumen-api/internal/application/report"
	"github.com/jhoicas/bitumen-api/internal/application/tallysync"
	"github.com/jhoicas/bitumen-api/internal/domain/access"
	"github.com/jhoicas/bitumen-api/internal/domain/navigation"
	"github.com/jhoicas/bitumen-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/bitumen-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/bitumen-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testAgentSecret = "test-agent-secret"
	testIssuer      = "bitumen-api-test"
	testCookie      = "bc_session"
	testPassword    = "s3cret-pass"
)

type stubPDF struct{}

func (stubPDF) Render(context.Context, report.Document) ([]byte, error) {
	return []byte("%PDF-1.3 stub"), nil
}

type testEnv struct {
	app   *fiber.App
	repos memory.Repositories
}

// buildTestApp construye la aplicación completa sobre el almacenamiento en memoria.
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	repos := memory.NewStore().Repos()
	resolver := access.NewResolver(repos.Permissions)
	authUC := auth.NewAuthUseCase(repos.Users, repos.Sessions, repos.Permissions, auth.Config{
		SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost,
	})
	svc := crm.NewServices(crm.Deps{
		Gate: resolver, Users: repos.Users, Sessions: repos.Sessions, Permissions: repos.Permissions,
		Clients: repos.Clients, Orders: repos.Orders, Tasks: repos.Tasks, Payments: repos.Payments,
		FollowUps: repos.FollowUps, TourAdvances: repos.TourAdvances, EWayBills: repos.EWayBills,
		PaymentTx: repos.Tx, BcryptCost: bcrypt.MinCost,
	})
	registry := tallysync.NewRegistry(tallysync.Config{
		StatusTimeout: 90 * time.Second, EvictTimeout: 10 * time.Minute, SweepInterval: time.Minute,
	}, nil)
	menu, err := navigation.DefaultMenu()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	app := apphttp.NewApp(apphttp.AppConfig{Name: "test", Metrics: apphttp.NewHTTPMetrics(reg)})
	apphttp.Router(app, apphttp.RouterDeps{
		Auth:        authUC,
		Permissions: permission.NewPermissionUseCase(repos.Users, repos.Permissions, resolver),
		Resolver:    resolver,
		Menu:        menu,
		Services:    svc,
		Dashboard:   dashboard.NewDashboardUseCase(resolver, repos.Dashboard, registry),
		Bridge:      tallysync.NewBridge(registry, svc.Clients, resolver, nil),
		Reports:     report.NewReportUseCase(resolver, svc, stubPDF{}),
		Gatherer:    reg,
		Cookie:      apphttp.CookieConfig{Name: testCookie},
		AgentSecret: testAgentSecret,
		AgentIssuer: testIssuer,
	})
	return &testEnv{app: app, repos: repos}
}

// do lanza una petición; token vacío = sin sesión.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = strings.NewReader(string(raw))
		}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func (e *testEnv) register(t *testing.T, username, role string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": testPassword, "name": username, "role": role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var u struct {
		ID string `json:"id"`
	}
	decode(t, resp, &u)
	return u.ID
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func agentToken(t *testing.T, id, mode string) string {
	t.Helper()
	tok, err := pkgjwt.GenerateAgent(testAgentSecret, testIssuer, id, mode, time.Hour)
	require.NoError(t, err)
	return tok
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo de permisos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistroLoginDenegacionYConcesion(t *testing.T) {
	e := buildTestApp(t)

	e.register(t, "admin", "ADMIN")
	raviID := e.register(t, "ravi", "EMPLOYEE")

	ravi := e.login(t, "ravi")
	resp := e.do(t, http.MethodGet, "/api/users", ravi, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")

	admin := e.login(t, "admin")
	resp = e.do(t, http.MethodPut, "/api/users/"+raviID+"/permissions", admin, map[string]interface{}{
		"grants": []map[string]interface{}{{"module": "USER_MANAGEMENT", "action": "VIEW", "granted": true}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/users", ravi, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el permiso se evalúa en cada petición")

	// EDIT no implica VIEW y viceversa.
	resp = e.do(t, http.MethodPost, "/api/users", ravi, map[string]string{
		"username": "otro", "password": testPassword, "name": "Otro", "role": "EMPLOYEE",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRegistro_SegundoAdminProhibido(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	resp := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "root", "password": testPassword, "name": "Root", "role": "ADMIN",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEscritura_DenegacionAntesDeValidarCuerpo(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	raviID := e.register(t, "ravi", "EMPLOYEE")
	ravi := e.login(t, "ravi")

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/clients", `{"company_name": 5}`},
		{http.MethodPut, "/api/clients/x", `{`},
		{http.MethodPatch, "/api/orders/x/status", `[]`},
		{http.MethodPost, "/api/payments", `nope`},
		{http.MethodPut, "/api/users/" + raviID + "/permissions", `{"grants": 1}`},
	}
	for _, tc := range cases {
		resp := e.do(t, tc.method, tc.path, ravi, tc.body)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	// Con permiso, el mismo cuerpo inválido sí es un error de validación.
	admin := e.login(t, "admin")
	resp := e.do(t, http.MethodPost, "/api/clients", admin, `{"company_name": 5}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUsuarios_AscensoAAdminSoloPorAdmin(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	meenaID := e.register(t, "meena", "SALES_MANAGER")
	admin := e.login(t, "admin")
	resp := e.do(t, http.MethodPut, "/api/users/"+meenaID+"/permissions", admin, map[string]interface{}{
		"grants": []map[string]interface{}{{"module": "USER_MANAGEMENT", "action": "EDIT"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	meena := e.login(t, "meena")
	resp = e.do(t, http.MethodPut, "/api/users/"+meenaID, meena, map[string]string{"role": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/permissions/me", meena, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var perms struct {
		IsAdmin bool `json:"is_admin"`
	}
	decode(t, resp, &perms)
	assert.False(t, perms.IsAdmin)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestSesion_SinTokenYTokenInvalido(t *testing.T) {
	e := buildTestApp(t)
	resp := e.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/clients", "no-existe", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_SESSION")
}

func TestSesion_CookieYLogout(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")

	resp := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ADMIN ", "password": testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "el login deja la cookie de sesión")
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: cookie.Value})
	me, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, me.StatusCode)
	var meBody struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Permissions []access.Grant `json:"permissions"`
	}
	decode(t, me, &meBody)
	assert.Equal(t, "admin", meBody.User.Username)
	assert.NotEmpty(t, meBody.Permissions)

	resp = e.do(t, http.MethodPost, "/api/auth/logout", cookie.Value, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = e.do(t, http.MethodGet, "/api/auth/me", cookie.Value, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	for _, in := range []map[string]string{
		{"username": "admin", "password": "incorrecta"},
		{"username": "nadie", "password": testPassword},
	} {
		resp := e.do(t, http.MethodPost, "/api/auth/login", "", in)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "INVALID_CREDENTIALS")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Navegación y CRUD
// ──────────────────────────────────────────────────────────────────────────────

func TestNavigation_FiltraPorPermisos(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	e.register(t, "ravi", "EMPLOYEE")

	var menu navigation.Menu
	decode(t, e.do(t, http.MethodGet, "/api/navigation", e.login(t, "ravi"), nil), &menu)
	ids := map[string]bool{}
	for _, it := range menu.Items {
		ids[it.ID] = true
	}
	for _, s := range menu.Sections {
		assert.NotEmpty(t, s.Items, "no se envían secciones vacías")
		for _, it := range s.Items {
			ids[it.ID] = true
		}
	}
	assert.True(t, ids["profile"], "ítems sin módulo siempre visibles")
	assert.False(t, ids["clients"])

	var full navigation.Menu
	decode(t, e.do(t, http.MethodGet, "/api/navigation", e.login(t, "admin"), nil), &full)
	def, err := navigation.DefaultMenu()
	require.NoError(t, err)
	assert.Equal(t, len(def.Sections), len(full.Sections), "el admin ve todo")
}

func TestClientes_CreditLimitCeroPorHTTP(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	admin := e.login(t, "admin")

	resp := e.do(t, http.MethodPost, "/api/clients", admin,
		`{"company_name":"Highways Infra","category":"BETA","credit_limit":"0","credit_days":0}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]interface{}
	decode(t, resp, &created)
	require.Contains(t, created, "credit_limit")
	assert.NotNil(t, created["credit_limit"], "0 no se convierte en null")
	id := created["id"].(string)

	resp = e.do(t, http.MethodPut, "/api/clients/"+id, admin, `{"credit_limit":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]interface{}
	decode(t, resp, &updated)
	assert.Nil(t, updated["credit_limit"])

	resp = e.do(t, http.MethodPost, "/api/clients", admin, `{"company_name":"X","category":"OMEGA"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var verr struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	decode(t, resp, &verr)
	assert.Equal(t, "VALIDATION", verr.Code)
	assert.Contains(t, verr.Fields, "category")

	resp = e.do(t, http.MethodGet, "/api/clients/00000000-0000-0000-0000-000000000000", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/clients", admin, `{no es json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPedidos_TarifaCeroYEstado(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	admin := e.login(t, "admin")

	var client map[string]interface{}
	decode(t, e.do(t, http.MethodPost, "/api/clients", admin, `{"company_name":"Sharma","category":"ALFA"}`), &client)

	resp := e.do(t, http.MethodPost, "/api/orders", admin, fmt.Sprintf(
		`{"client_id":%q,"items":[{"product_name":"VG-30","quantity":10,"unit":"MT","rate":0}]}`, client["id"]))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order map[string]interface{}
	decode(t, resp, &order)
	items := order["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "0", fmt.Sprint(items[0].(map[string]interface{})["rate"]))

	id := order["id"].(string)
	resp = e.do(t, http.MethodPatch, "/api/orders/"+id+"/status", admin, `{"status":"DELIVERED"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "PENDING no pasa directo a DELIVERED")
	resp = e.do(t, http.MethodPatch, "/api/orders/"+id+"/status", admin, `{"status":"CONFIRMED"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Agente de sincronización
// ──────────────────────────────────────────────────────────────────────────────

func TestAgente_TokenRequerido(t *testing.T) {
	e := buildTestApp(t)
	resp := e.do(t, http.MethodPost, "/api/sync/heartbeat", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/sync/heartbeat", "token.invalido.aqui", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	otro, err := pkgjwt.GenerateAgent("otro-secret", testIssuer, "tally-pc-01", pkgjwt.ModeReal, time.Hour)
	require.NoError(t, err)
	resp = e.do(t, http.MethodPost, "/api/sync/heartbeat", otro, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAgente_HeartbeatYLedgers(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	admin := e.login(t, "admin")
	mock := agentToken(t, "mock-agent", pkgjwt.ModeMock)
	realTok := agentToken(t, "tally-pc-01", pkgjwt.ModeReal)

	resp := e.do(t, http.MethodPost, "/api/sync/heartbeat", mock, map[string]string{"hostname": "LAPTOP"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st struct {
		Connected bool `json:"connected"`
		Agents    []struct {
			ID   string `json:"id"`
			Real bool   `json:"real"`
		} `json:"agents"`
	}
	decode(t, e.do(t, http.MethodGet, "/api/sync/status", admin, nil), &st)
	assert.False(t, st.Connected, "un agente mock no conecta")
	require.Len(t, st.Agents, 1)

	resp = e.do(t, http.MethodPost, "/api/sync/ledgers", mock, `{"ledgers":[{"name":"Sharma Constructions"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/sync/heartbeat", realTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, e.do(t, http.MethodGet, "/api/sync/status", admin, nil), &st)
	assert.True(t, st.Connected)

	resp = e.do(t, http.MethodPost, "/api/sync/ledgers", realTok,
		`{"ledgers":[{"name":"Sharma Constructions","closing_balance":"1500.00"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var relay struct {
		Created int `json:"created"`
	}
	decode(t, resp, &relay)
	assert.Equal(t, 1, relay.Created)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/ledgers", strings.NewReader(
		`<ENVELOPE><BODY><DATA><COLLECTION><LEDGER NAME="Sharma Constructions"><CLOSINGBALANCE>-2000</CLOSINGBALANCE></LEDGER></COLLECTION></DATA></BODY></ENVELOPE>`))
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Authorization", "Bearer "+realTok)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var relayXML struct {
		Updated int `json:"updated"`
	}
	decode(t, resp, &relayXML)
	assert.Equal(t, 1, relayXML.Updated)

	c, err := e.repos.Clients.GetByLedgerName(context.Background(), "Sharma Constructions")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "2000", c.OutstandingAmount.String())
}

func TestMetricsYHealth(t *testing.T) {
	e := buildTestApp(t)
	resp := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "bitumen_http_requests_total")
}

func TestReportes_CSV(t *testing.T) {
	e := buildTestApp(t)
	e.register(t, "admin", "ADMIN")
	admin := e.login(t, "admin")

	resp := e.do(t, http.MethodGet, "/api/reports/clients.csv", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "clients.csv")

	resp = e.do(t, http.MethodGet, "/api/reports/payments.pdf", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}
