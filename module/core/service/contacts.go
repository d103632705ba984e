package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nandanugg/safetrip/module/core/domain"
	"github.com/nandanugg/safetrip/module/core/internal/repository/bus"
	"github.com/nandanugg/safetrip/module/core/internal/repository/kv"
)

const (
	KeyContacts         = "contacts"
	DefaultRelationship = "Emergency Contact"
)

var (
	ErrInvalidContact  = errors.New("contacts: name and phone are required")
	ErrContactNotFound = errors.New("contacts: not found")
)

// Contacts is the persisted emergency contact list. At most one contact
// carries the priority flag.
type Contacts struct {
	store  kv.Store
	bus    bus.Bus
	logger *zap.Logger

	mu sync.Mutex
}

func NewContacts(store kv.Store, b bus.Bus, logger *zap.Logger) *Contacts {
	return &Contacts{store: store, bus: b, logger: logger}
}

func (c *Contacts) List(ctx context.Context) ([]domain.EmergencyContact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Priority returns the priority contact, or nil when none is marked.
func (c *Contacts) Priority(ctx context.Context) (*domain.EmergencyContact, error) {
	list, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].IsPriority {
			return &list[i], nil
		}
	}
	return nil, nil
}

func (c *Contacts) Add(ctx context.Context, contact domain.EmergencyContact) (domain.EmergencyContact, error) {
	contact, err := normalizeContact(contact)
	if err != nil {
		return domain.EmergencyContact{}, err
	}
	contact.ID = uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.load(ctx)
	if err != nil {
		return domain.EmergencyContact{}, err
	}
	if contact.IsPriority {
		clearPriority(list)
	}
	list = append(list, contact)
	if err := c.save(ctx, list); err != nil {
		return domain.EmergencyContact{}, err
	}
	return contact, nil
}

func (c *Contacts) Update(ctx context.Context, id string, contact domain.EmergencyContact) (domain.EmergencyContact, error) {
	contact, err := normalizeContact(contact)
	if err != nil {
		return domain.EmergencyContact{}, err
	}
	contact.ID = id

	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.load(ctx)
	if err != nil {
		return domain.EmergencyContact{}, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return domain.EmergencyContact{}, ErrContactNotFound
	}
	if contact.IsPriority {
		clearPriority(list)
	}
	list[idx] = contact
	if err := c.save(ctx, list); err != nil {
		return domain.EmergencyContact{}, err
	}
	return contact, nil
}

func (c *Contacts) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, err := c.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return ErrContactNotFound
	}
	list = append(list[:idx], list[idx+1:]...)
	return c.save(ctx, list)
}

func (c *Contacts) load(ctx context.Context) ([]domain.EmergencyContact, error) {
	list, _, err := kv.GetJSON[[]domain.EmergencyContact](ctx, c.store, KeyContacts)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	if list == nil {
		list = []domain.EmergencyContact{}
	}
	return list, nil
}

func (c *Contacts) save(ctx context.Context, list []domain.EmergencyContact) error {
	if err := kv.SetJSON(ctx, c.store, KeyContacts, list); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}
	if err := c.bus.Publish(ctx, bus.Event{Key: KeyContacts}); err != nil {
		c.logger.Warn("announce contacts change", zap.Error(err))
	}
	return nil
}

func normalizeContact(contact domain.EmergencyContact) (domain.EmergencyContact, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Phone = strings.TrimSpace(contact.Phone)
	contact.Relationship = strings.TrimSpace(contact.Relationship)
	if contact.Name == "" || contact.Phone == "" {
		return contact, ErrInvalidContact
	}
	if contact.Relationship == "" {
		contact.Relationship = DefaultRelationship
	}
	return contact, nil
}

func clearPriority(list []domain.EmergencyContact) {
	for i := range list {
		list[i].IsPriority = false
	}
}

func indexOf(list []domain.EmergencyContact, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
