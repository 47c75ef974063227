package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rrhh/internal/auth"
	"rrhh/internal/database/dbtest"
	"rrhh/internal/events"
	"rrhh/internal/handler"
	"rrhh/internal/middleware"
	"rrhh/internal/repository"
	"rrhh/internal/seed"
	"rrhh/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "handler-secret"

func init() {
	gin.SetMode(gin.TestMode)
	if err := handler.RegisterValidators(); err != nil {
		panic(err)
	}
}

type api struct {
	router *gin.Engine
	repos  *repository.Repositories
	tokens *auth.TokenManager
}

type envelope struct {
	Status string            `json:"status"`
	Code   string            `json:"code"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"campos"`
	Data   json.RawMessage   `json:"data"`
}

func newAPI(t *testing.T) *api {
	t.Helper()

	data, err := seed.Defaults()
	require.NoError(t, err)

	repos := repository.NewRepositories(dbtest.New(t))
	tokens := auth.NewTokenManager(secret, time.Hour)
	svc := service.NewServices(repos, tokens, events.NopPublisher{}, nil, data)
	_, err = svc.Seed.Run(context.Background(), true)
	require.NoError(t, err)

	r := gin.New()
	handler.RegisterAPI(r, svc, middleware.NewAuthenticator(tokens, repos.Users, repos.Roles), nil)

	return &api{router: r, repos: repos, tokens: tokens}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) login(t *testing.T, email, password string) string {
	t.Helper()
	w := a.do(http.MethodPost, "/api/usuarios/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func employeeBody(email string) gin.H {
	return gin.H{
		"nombre":        "Lucía",
		"apellido":      "Fernández",
		"email":         email,
		"fecha_ingreso": "2023-02-01",
		"salario":       "18500.00",
	}
}

func TestLoginResponse(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/usuarios/login", "", gin.H{"email": "admin@rrhh.local", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["expires_at"])

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "access_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	t.Run("wrong password", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/usuarios/login", "", gin.H{"email": "admin@rrhh.local", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decode(t, w).Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/usuarios/login", "", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "VALIDATION", env.Code)
		assert.Contains(t, env.Fields, "email")
		assert.Contains(t, env.Fields, "password")
	})
}

func TestMe(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "rrhh@rrhh.local", "rrhh1234")

	w := a.do(http.MethodGet, "/api/usuarios/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"rrhh@rrhh.local"`)

	w = a.do(http.MethodGet, "/api/usuarios/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExpiredToken(t *testing.T) {
	a := newAPI(t)

	admin, err := a.repos.Users.FindByEmail(context.Background(), "admin@rrhh.local")
	require.NoError(t, err)

	past := auth.NewTokenManager(secret, time.Minute).WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	token, _, err := past.Issue(admin)
	require.NoError(t, err)

	w := a.do(http.MethodGet, "/api/empleados", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w).Code)
}

func TestEmployeeCreate(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "admin@rrhh.local", "admin123")

	w := a.do(http.MethodPost, "/api/empleados", token, employeeBody("lucia@empresa.test"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID     uint   `json:"id"`
		Estado string `json:"estado"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "activo", created.Estado)

	t.Run("duplicate email", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/empleados", token, employeeBody("lucia@empresa.test"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", decode(t, w).Code)
	})

	t.Run("unknown department", func(t *testing.T) {
		body := employeeBody("otra@empresa.test")
		body["departamento_id"] = 9999
		w := a.do(http.MethodPost, "/api/empleados", token, body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "REFERENCE_NOT_FOUND", decode(t, w).Code)

		_, err := a.repos.Employees.FindByEmail(context.Background(), "otra@empresa.test")
		assert.Error(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/empleados", token, gin.H{"nombre": "Solo"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Contains(t, env.Fields, "apellido")
		assert.Contains(t, env.Fields, "salario")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/empleados", bytes.NewBufferString("{"))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEmployeeRoleAccess(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "empleado@rrhh.local", "empleado123")

	w := a.do(http.MethodGet, "/api/empleados", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/empleados", token, employeeBody("x@empresa.test"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w).Code)

	w = a.do(http.MethodGet, "/api/roles", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAndDeleteMissing(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "admin@rrhh.local", "admin123")

	w := a.do(http.MethodGet, "/api/empleados/4242", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Code)

	w = a.do(http.MethodDelete, "/api/contratos/4242", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/empleados/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Fields, "id")
}

func TestAttendanceHourValidation(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "rrhh@rrhh.local", "rrhh1234")

	// "8:05" passes time.Parse("15:04") but is not HH:MM.
	for _, hour := range []string{"25:00", "8:05", "08:5", "08:05:00"} {
		t.Run(hour, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/asistencias", token, gin.H{
				"empleado_id":  1,
				"fecha":        "2024-05-02",
				"hora_entrada": hour,
			})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decode(t, w)
			assert.Equal(t, "VALIDATION", env.Code)
			assert.Equal(t, "must be a time as HH:MM", env.Fields["hora_entrada"])
		})
	}
}

func TestPayrollPeriodQuery(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "admin@rrhh.local", "admin123")

	for _, period := range []string{"2024-13", "2024-5", "24-05"} {
		w := a.do(http.MethodGet, "/api/nominas/periodo?periodo="+period, token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, period)
		assert.Contains(t, decode(t, w).Fields, "periodo", period)
	}

	w := a.do(http.MethodGet, "/api/nominas/periodo?periodo=2024-05", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUserDuplicateEmail(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "admin@rrhh.local", "admin123")

	w := a.do(http.MethodPost, "/api/usuarios", token, gin.H{
		"nombre":   "Otro",
		"email":    "rrhh@rrhh.local",
		"password": "secreto1",
		"rol":      "rrhh",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode(t, w).Code)
}

func TestStatisticsDates(t *testing.T) {
	a := newAPI(t)
	token := a.login(t, "supervisor@rrhh.local", "supervisor123")

	w := a.do(http.MethodGet, "/api/estadisticas", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/estadisticas?desde=01-05-2024", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Fields, "desde")
}

func TestNotificationsOfCaller(t *testing.T) {
	a := newAPI(t)
	admin := a.login(t, "admin@rrhh.local", "admin123")
	emp := a.login(t, "empleado@rrhh.local", "empleado123")

	u, err := a.repos.Users.FindByEmail(context.Background(), "empleado@rrhh.local")
	require.NoError(t, err)

	w := a.do(http.MethodPost, "/api/notificaciones", admin, gin.H{"usuario_id": u.ID, "titulo": "Bienvenida"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/notificaciones/no-leidas", emp, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"no_leidas":1}`, string(decode(t, w).Data))

	w = a.do(http.MethodPut, "/api/notificaciones/leer-todas", emp, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/notificaciones/no-leidas", emp, nil)
	assert.JSONEq(t, `{"no_leidas":0}`, string(decode(t, w).Data))

	// only admin and rrhh send notifications
	w = a.do(http.MethodPost, "/api/notificaciones", emp, gin.H{"usuario_id": u.ID, "titulo": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
