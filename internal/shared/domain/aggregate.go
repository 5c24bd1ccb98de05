// Package domain holds the building blocks shared by every bounded context:
// identity, timestamps, versioning and the domain event buffer.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the consistency boundary persisted as a unit.
type AggregateRoot interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Version() int
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot carries identity, timestamps, the optimistic version and
// the events raised since the aggregate was loaded.
type BaseAggregateRoot struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []DomainEvent
}

// NewBaseAggregateRoot creates a fresh aggregate with a random ID.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return NewBaseAggregateRootWithID(uuid.New())
}

// NewBaseAggregateRootWithID creates a fresh aggregate with the given ID.
func NewBaseAggregateRootWithID(id uuid.UUID) BaseAggregateRoot {
	now := time.Now().UTC()
	return BaseAggregateRoot{
		id:        id,
		createdAt: now,
		updatedAt: now,
	}
}

// RehydrateBaseAggregateRoot rebuilds the base from persisted state.
func RehydrateBaseAggregateRoot(id uuid.UUID, createdAt, updatedAt time.Time, version int) BaseAggregateRoot {
	return BaseAggregateRoot{
		id:        id,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
	}
}

func (a *BaseAggregateRoot) ID() uuid.UUID        { return a.id }
func (a *BaseAggregateRoot) CreatedAt() time.Time { return a.createdAt }
func (a *BaseAggregateRoot) UpdatedAt() time.Time { return a.updatedAt }
func (a *BaseAggregateRoot) Version() int         { return a.version }

// Touch bumps the version and the update timestamp.
func (a *BaseAggregateRoot) Touch() {
	a.updatedAt = time.Now().UTC()
	a.version++
}

// DomainEvents returns the events raised since the last clear.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.events
}

// ClearDomainEvents drops buffered events once they are stored in the outbox.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}

// AddDomainEvent buffers an event.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}
