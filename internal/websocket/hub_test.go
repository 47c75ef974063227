package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rrhh/internal/auth"
	"rrhh/internal/database/dbtest"
	"rrhh/internal/model"
	"rrhh/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	hub    *Hub
	tokens *auth.TokenManager
	users  repository.UserRepository
	srv    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil)
	go hub.Run(ctx)

	tokens := auth.NewTokenManager("ws-secret", time.Hour)
	users := repository.NewRepositories(dbtest.New(t)).Users
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, tokens, users, c) })

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{hub: hub, tokens: tokens, users: users, srv: srv}
}

func (s *testServer) user(t *testing.T, email string, active bool) *model.User {
	t.Helper()
	u := &model.User{Name: email, Email: email, PasswordHash: "x", Role: model.RoleEmployee, Active: active}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func (s *testServer) url(t *testing.T, u *model.User) string {
	t.Helper()
	token, _, err := s.tokens.Issue(u)
	require.NoError(t, err)
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws?token=" + token
}

func TestSendToUser(t *testing.T) {
	s := newTestServer(t)
	u := s.user(t, "ana@rrhh.local", true)

	conn, _, err := websocket.DefaultDialer.Dial(s.url(t, u), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Connected(u.ID) }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, s.hub.SendToUser(u.ID+1, map[string]string{"titulo": "otro"}))
	assert.Equal(t, 1, s.hub.SendToUser(u.ID, map[string]string{"titulo": "hola"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg, &payload))
	assert.Equal(t, "hola", payload["titulo"])
}

func TestServeWsRejectsBadToken(t *testing.T) {
	s := newTestServer(t)
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws?token=garbage"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWsRejectsUnusableUser(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		user *model.User
	}{
		{name: "inactive", user: s.user(t, "baja@rrhh.local", false)},
		{name: "missing", user: &model.User{ID: 424242, Role: model.RoleEmployee, Active: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(s.url(t, tt.user), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.False(t, s.hub.Connected(tt.user.ID))
		})
	}
}
