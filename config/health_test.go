package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type fakeMQTT struct {
	mqtt.Client
	connected bool
}

func (f *fakeMQTT) IsConnected() bool { return f.connected }

type healthResponse struct {
	Status       string                       `json:"status"`
	Dependencies map[string]map[string]string `json:"dependencies"`
}

func serveHealth(t *testing.T, h *HealthChecker) (int, healthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	r.ServeHTTP(w, req)

	var resp healthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return w.Code, resp
}

func TestHealth_NoDependencies(t *testing.T) {
	code, resp := serveHealth(t, NewHealthChecker(nil, nil, nil, nil))
	if code != http.StatusOK || resp.Status != "healthy" {
		t.Fatalf("expected healthy, got %d %+v", code, resp)
	}
	if len(resp.Dependencies) != 0 {
		t.Fatalf("expected no dependencies, got %v", resp.Dependencies)
	}
}

func TestHealth_AllUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	mock.ExpectPing()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	code, resp := serveHealth(t, NewHealthChecker(db, nil, &fakeMQTT{connected: true}, rdb))
	if code != http.StatusOK || resp.Status != "healthy" {
		t.Fatalf("expected healthy, got %d %+v", code, resp)
	}
	for _, name := range []string{"postgres", "mqtt", "redis"} {
		if resp.Dependencies[name]["status"] != "up" {
			t.Errorf("expected %s up, got %v", name, resp.Dependencies[name])
		}
	}
}

func TestHealth_Down(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	mr.Close()

	code, resp := serveHealth(t, NewHealthChecker(db, nil, &fakeMQTT{connected: false}, rdb))
	if code != http.StatusServiceUnavailable || resp.Status != "unhealthy" {
		t.Fatalf("expected unhealthy, got %d %+v", code, resp)
	}
	for _, name := range []string{"postgres", "mqtt", "redis"} {
		if resp.Dependencies[name]["status"] != "down" {
			t.Errorf("expected %s down, got %v", name, resp.Dependencies[name])
		}
	}
}
