package authz

import (
	"fmt"

	"github.com/google/uuid"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
)

// Actor identifies who is attempting an operation. Role is kept as the raw
// string from the token/session so the predicate owns normalization.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Action enumerates the operations the predicate understands.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionFulfill Action = "fulfill"
)

// EntityKind names the entity an action targets.
type EntityKind string

const (
	KindCategory      EntityKind = "category"
	KindInventoryItem EntityKind = "inventory_item"
	KindItemRequest   EntityKind = "item_request"
	KindUser          EntityKind = "user"
	KindNotification  EntityKind = "notification"
)

// CanPerform is the pure role-based permission check. Role comparison is
// case-insensitive; an absent or unknown role always denies.
func CanPerform(actor Actor, action Action, kind EntityKind) bool {
	role, err := enums.ParseRole(actor.Role)
	if err != nil {
		return false
	}

	switch kind {
	case KindCategory, KindInventoryItem:
		switch action {
		case ActionCreate, ActionUpdate, ActionDelete:
			return role.IsPrivileged()
		}
		return true

	case KindItemRequest:
		switch action {
		case ActionApprove, ActionReject, ActionFulfill, ActionDelete:
			return role.IsPrivileged()
		case ActionCreate:
			return true
		case ActionUpdate:
			// Non-owners need a privileged role; owner edits are checked
			// with CanEditOwnRequest since they depend on request state.
			return role.IsPrivileged()
		}
		return true

	case KindUser:
		switch action {
		case ActionDelete:
			return false
		case ActionCreate, ActionUpdate:
			return role == enums.RoleAdmin
		}
		return true
	}

	return true
}

// CanEditOwnRequest reports whether the actor may edit a request they own.
// Owners keep edit rights only while the request is draft or pending.
func CanEditOwnRequest(actor Actor, ownerID uuid.UUID, status enums.RequestStatus) bool {
	role, err := enums.ParseRole(actor.Role)
	if err != nil {
		return false
	}
	if role.IsPrivileged() {
		return true
	}
	if actor.ID != ownerID {
		return false
	}
	return status == enums.RequestStatusDraft || status == enums.RequestStatusPending
}

// Deny builds the PermissionError surfaced when CanPerform returns false.
func Deny(action Action, kind EntityKind) error {
	msg := fmt.Sprintf("%s %s requires the admin or manager role", action, kind)
	return pkgerrors.New(pkgerrors.CodeForbidden, msg)
}
