package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/idgen"
	"github.com/nandanugg/safetrip/module/core/internal/repository/bus"
	"github.com/nandanugg/safetrip/module/core/internal/repository/kv"
)

type fixedLocation struct {
	loc *domain.GPSLocation
}

func (f fixedLocation) CurrentLocation() *domain.GPSLocation { return f.loc }

type sosFixture struct {
	sos      *SOS
	sleep    *SleepMode
	contacts *Contacts
	pub      *mockSOSPublisher
}

func newSOSFixture(loc *domain.GPSLocation) *sosFixture {
	ctx := context.Background()
	store := kv.NewMemory()
	b := bus.NewLocal()
	f := &sosFixture{
		sleep:    NewSleepMode(ctx, store, b, nopLogger()),
		contacts: NewContacts(store, b, nopLogger()),
		pub:      &mockSOSPublisher{},
	}
	f.sos = NewSOS(SOSParams{
		DeviceID:  "device-1",
		SleepMode: f.sleep,
		Contacts:  f.contacts,
		Locations: fixedLocation{loc: loc},
		Publisher: f.pub,
		Logger:    nopLogger(),
	})
	return f
}

func TestSOS_TriggerWithoutPriorityContact(t *testing.T) {
	f := newSOSFixture(nil)

	alert, err := f.sos.Trigger(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idgen.Valid(alert.ID) {
		t.Errorf("expected 24-digit id, got %q", alert.ID)
	}
	want := []string{RecipientPolice, RecipientEmergencyServices}
	if !reflect.DeepEqual(alert.Recipients, want) {
		t.Errorf("expected recipients %v, got %v", want, alert.Recipients)
	}
	if alert.Contact != nil || alert.Location != nil {
		t.Errorf("expected no contact and no location, got %+v", alert)
	}
	if len(f.pub.calls) != 1 || f.pub.calls[0] != alert {
		t.Fatalf("expected alert published once, got %d", len(f.pub.calls))
	}
}

func TestSOS_TriggerWithPriorityContactAndLocation(t *testing.T) {
	loc := &domain.GPSLocation{Latitude: 40.75, Longitude: -73.98, Timestamp: 42}
	f := newSOSFixture(loc)
	ctx := context.Background()
	if _, err := f.contacts.Add(ctx, domain.EmergencyContact{Name: "Sam", Phone: "555", IsPriority: true}); err != nil {
		t.Fatalf("seed contact: %v", err)
	}

	alert, err := f.sos.Trigger(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(alert.Recipients, []string{RecipientPolice, "Sam"}) {
		t.Errorf("unexpected recipients %v", alert.Recipients)
	}
	if alert.Contact == nil || alert.Contact.Name != "Sam" {
		t.Errorf("expected priority contact attached, got %+v", alert.Contact)
	}
	if alert.Location == nil || alert.Location.Latitude != 40.75 {
		t.Errorf("expected location attached, got %+v", alert.Location)
	}
}

func TestSOS_RefusedInSleepMode(t *testing.T) {
	f := newSOSFixture(nil)
	ctx := context.Background()
	f.sleep.Set(ctx, true)

	if _, err := f.sos.Trigger(ctx); !errors.Is(err, ErrSOSSleepMode) {
		t.Fatalf("expected ErrSOSSleepMode, got %v", err)
	}
	if len(f.pub.calls) != 0 {
		t.Fatal("expected nothing published")
	}
}

func TestSOS_PublishFailure(t *testing.T) {
	f := newSOSFixture(nil)
	f.pub.publishSOSFn = func(context.Context, *domain.SOSAlert) error {
		return errors.New("broker down")
	}

	if _, err := f.sos.Trigger(context.Background()); err == nil {
		t.Fatal("expected publish error")
	}
}
