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

type mockContactService struct {
	listFn   func(ctx context.Context) ([]domain.EmergencyContact, error)
	addFn    func(ctx context.Context, contact domain.EmergencyContact) (domain.EmergencyContact, error)
	updateFn func(ctx context.Context, id string, contact domain.EmergencyContact) (domain.EmergencyContact, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockContactService) List(ctx context.Context) ([]domain.EmergencyContact, error) {
	return m.listFn(ctx)
}

func (m *mockContactService) Add(ctx context.Context, contact domain.EmergencyContact) (domain.EmergencyContact, error) {
	return m.addFn(ctx, contact)
}

func (m *mockContactService) Update(ctx context.Context, id string, contact domain.EmergencyContact) (domain.EmergencyContact, error) {
	return m.updateFn(ctx, id, contact)
}

func (m *mockContactService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func setupContactRouter(svc contactService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewContactHandler(svc).Register(r.Group(""))
	return r
}

func TestListContacts(t *testing.T) {
	svc := &mockContactService{
		listFn: func(context.Context) ([]domain.EmergencyContact, error) {
			return []domain.EmergencyContact{{ID: "a", Name: "Mom", Phone: "1"}}, nil
		},
	}
	w := doRequest(setupContactRouter(svc), "GET", "/contacts", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []domain.EmergencyContact
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Mom" {
		t.Fatalf("unexpected contacts %+v", got)
	}
}

func TestListContacts_Error(t *testing.T) {
	svc := &mockContactService{
		listFn: func(context.Context) ([]domain.EmergencyContact, error) {
			return nil, errors.New("store down")
		},
	}
	if w := doRequest(setupContactRouter(svc), "GET", "/contacts", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestCreateContact(t *testing.T) {
	svc := &mockContactService{
		addFn: func(_ context.Context, c domain.EmergencyContact) (domain.EmergencyContact, error) {
			if c.Name != "Mom" || !c.IsPriority {
				t.Errorf("unexpected contact %+v", c)
			}
			c.ID = "new-id"
			return c, nil
		},
	}
	w := doRequest(setupContactRouter(svc), "POST", "/contacts", []byte(`{"name":"Mom","phone":"555","is_priority":true}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var got domain.EmergencyContact
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "new-id" {
		t.Errorf("expected new-id, got %s", got.ID)
	}
}

func TestCreateContact_Errors(t *testing.T) {
	svc := &mockContactService{
		addFn: func(context.Context, domain.EmergencyContact) (domain.EmergencyContact, error) {
			return domain.EmergencyContact{}, service.ErrInvalidContact
		},
	}
	r := setupContactRouter(svc)

	if w := doRequest(r, "POST", "/contacts", []byte(`not json`)); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
	if w := doRequest(r, "POST", "/contacts", []byte(`{"name":""}`)); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid contact, got %d", w.Code)
	}
}

func TestUpdateContact(t *testing.T) {
	svc := &mockContactService{
		updateFn: func(_ context.Context, id string, c domain.EmergencyContact) (domain.EmergencyContact, error) {
			if id != "known" {
				return domain.EmergencyContact{}, service.ErrContactNotFound
			}
			c.ID = id
			return c, nil
		},
	}
	r := setupContactRouter(svc)

	if w := doRequest(r, "PUT", "/contacts/known", []byte(`{"name":"A","phone":"1"}`)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := doRequest(r, "PUT", "/contacts/other", []byte(`{"name":"A","phone":"1"}`)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDeleteContact(t *testing.T) {
	svc := &mockContactService{
		deleteFn: func(_ context.Context, id string) error {
			switch id {
			case "known":
				return nil
			case "broken":
				return errors.New("store down")
			default:
				return service.ErrContactNotFound
			}
		},
	}
	r := setupContactRouter(svc)

	if w := doRequest(r, "DELETE", "/contacts/known", nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := doRequest(r, "DELETE", "/contacts/other", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := doRequest(r, "DELETE", "/contacts/broken", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
