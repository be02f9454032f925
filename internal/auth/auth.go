package auth

import (
	"context"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}

// CanManageSalon reports whether the role may edit any staff schedule of its salon.
func (r Role) CanManageSalon() bool {
	return r == RoleOwner || r == RoleManager
}

// Actor is the authenticated caller.
type Actor struct {
	UserID  uuid.UUID
	SalonID uuid.UUID
	Role    Role
}

// Context is the explicit authorization context handed to use cases.
type Context struct {
	actor   Actor
	staffID *uuid.UUID
}

// NewContext builds a Context. staffID is the caller's own staff record, if any.
func NewContext(actor Actor, staffID *uuid.UUID) Context {
	return Context{actor: actor, staffID: staffID}
}

func (c Context) CurrentActor() Actor {
	return c.actor
}

// HasRoleInSalon reports whether the actor holds any known role in salonID.
func (c Context) HasRoleInSalon(salonID uuid.UUID) bool {
	return c.actor.Role.Valid() && c.actor.SalonID != uuid.Nil && c.actor.SalonID == salonID
}

// ManagesSalon reports whether the actor is an owner or manager of salonID.
func (c Context) ManagesSalon(salonID uuid.UUID) bool {
	return c.HasRoleInSalon(salonID) && c.actor.Role.CanManageSalon()
}

// StaffIDForActor returns the staff record linked to the caller.
func (c Context) StaffIDForActor() (uuid.UUID, bool) {
	if c.staffID == nil {
		return uuid.Nil, false
	}
	return *c.staffID, true
}

// CanActOnStaff reports whether the actor may read or change the schedules
// of staffID, who belongs to salonID. Managers cover their whole salon; a
// staff member only themself.
func (c Context) CanActOnStaff(salonID, staffID uuid.UUID) bool {
	if c.ManagesSalon(salonID) {
		return true
	}
	own, ok := c.StaffIDForActor()
	return ok && own == staffID && c.HasRoleInSalon(salonID)
}

type ctxKey struct{}

func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(ctxKey{}).(Context)
	return ac, ok
}
