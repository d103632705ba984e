package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/service"
)

type mockSOSService struct {
	triggerFn func(ctx context.Context) (*domain.SOSAlert, error)
}

func (m *mockSOSService) Trigger(ctx context.Context) (*domain.SOSAlert, error) {
	return m.triggerFn(ctx)
}

func setupSOSRouter(svc sosService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewSOSHandler(svc).Register(r.Group(""))
	return r
}

func TestTriggerSOS(t *testing.T) {
	svc := &mockSOSService{
		triggerFn: func(context.Context) (*domain.SOSAlert, error) {
			return &domain.SOSAlert{
				ID:         "123456789012345678901234",
				Recipients: []string{service.RecipientPolice, service.RecipientEmergencyServices},
			}, nil
		},
	}
	w := doRequest(setupSOSRouter(svc), "POST", "/sos", nil)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", w.Code)
	}
	var got domain.SOSAlert
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "123456789012345678901234" || len(got.Recipients) != 2 {
		t.Fatalf("unexpected alert %+v", got)
	}
}

func TestTriggerSOS_SleepMode(t *testing.T) {
	svc := &mockSOSService{
		triggerFn: func(context.Context) (*domain.SOSAlert, error) {
			return nil, service.ErrSOSSleepMode
		},
	}
	w := doRequest(setupSOSRouter(svc), "POST", "/sos", nil)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["error"] != service.MsgSOSSleepMode {
		t.Errorf("unexpected message %q", resp["error"])
	}
}

func TestTriggerSOS_PublishError(t *testing.T) {
	svc := &mockSOSService{
		triggerFn: func(context.Context) (*domain.SOSAlert, error) {
			return nil, errors.New("broker down")
		},
	}
	if w := doRequest(setupSOSRouter(svc), "POST", "/sos", nil); w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}
