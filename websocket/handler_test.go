package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHandleWebSocketStreamsFeed(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	hub := NewHub(log, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	admin := primitive.NewObjectID()
	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub, admin)
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var welcome Notification
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, NotificationTypeConnected, welcome.Type)
	assert.Equal(t, admin.Hex(), welcome.UserID)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	earner := primitive.NewObjectID()
	hub.NotifyCommissionCreated(models.Commission{EarnerID: earner, Level: 2, Amount: 30})

	var got struct {
		Type   string            `json:"type"`
		UserID string            `json:"userID"`
		Data   models.Commission `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, NotificationTypeCommissionCreated, got.Type)
	assert.Equal(t, earner.Hex(), got.UserID)
	assert.Equal(t, 2, got.Data.Level)
	assert.Equal(t, 30.0, got.Data.Amount)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://admin.skillnera.com/", "http://localhost:3001"})

	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "api.skillnera.com", true},
		{"https://admin.skillnera.com", "api.skillnera.com", true},
		{"http://localhost:3001", "api.skillnera.com", true},
		{"https://api.skillnera.com", "api.skillnera.com", true},
		{"https://evil.example.com", "api.skillnera.com", false},
		{"http://localhost:3000", "api.skillnera.com", false},
		{"://bad", "api.skillnera.com", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("GET", "http://"+tt.host+"/ws", nil)
		req.Host = tt.host
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.want, check(req), tt.origin)
	}

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	assert.True(t, originChecker([]string{"*"})(req))
}

func TestHandleWebSocketRejectsForeignOrigin(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	hub := NewHub(log, []string{"https://admin.skillnera.com"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub, primitive.NewObjectID())
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.ClientCount())

	header.Set("Origin", "https://admin.skillnera.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	conn.Close()
}
