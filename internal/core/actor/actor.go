// Package actor carries the explicit caller identity for ledger operations.
//
// Every ledger operation takes the tenant id and actor as explicit input
// rather than reading ambient session state, so the engine can be driven
// from HTTP, a queue, or a test harness without a live session layer.
package actor

import (
	"context"

	"savdo/internal/core/id"
)

// Kind distinguishes the three authenticated caller types.
type Kind string

const (
	KindEmployee Kind = "employee"
	KindDealer   Kind = "dealer"
	KindCustomer Kind = "customer"
)

// Actor identifies who is calling, for which tenant.
// The auth collaborator resolves it before any ledger call; the engine
// trusts the tenant id it is given and scopes every query to it.
type Actor struct {
	TenantID id.ID
	Kind     Kind
	ID       id.ID
	Name     string
}

// IsZero reports whether the actor is unresolved.
func (a Actor) IsZero() bool {
	return id.IsNil(a.TenantID)
}

// actorKey is the context key for Actor.
type actorKey struct{}

// WithActor stores the resolved actor in context. Used by transport
// middleware so logging can enrich records; domain code receives the
// actor explicitly.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor from context, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
