package authz

import (
	"testing"

	"github.com/google/uuid"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
)

func TestCanPerformApproveTruthTable(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"manager", true},
		{"user", false},
		{"ADMIN", true},
		{"Manager", true},
		{"", false},
		{"superuser", false},
	}
	for _, tc := range cases {
		actor := Actor{ID: uuid.New(), Role: tc.role}
		for _, action := range []Action{ActionApprove, ActionReject, ActionFulfill} {
			if got := CanPerform(actor, action, KindItemRequest); got != tc.want {
				t.Fatalf("role %q action %s: expected %v, got %v", tc.role, action, tc.want, got)
			}
		}
	}
}

func TestCanPerformInventoryAndCategoryWrites(t *testing.T) {
	user := Actor{ID: uuid.New(), Role: "user"}
	manager := Actor{ID: uuid.New(), Role: "manager"}

	for _, kind := range []EntityKind{KindCategory, KindInventoryItem} {
		for _, action := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
			if CanPerform(user, action, kind) {
				t.Fatalf("user must not %s %s", action, kind)
			}
			if !CanPerform(manager, action, kind) {
				t.Fatalf("manager should %s %s", action, kind)
			}
		}
	}
}

func TestCanPerformRequestCreateIsOpenToAll(t *testing.T) {
	if !CanPerform(Actor{ID: uuid.New(), Role: "user"}, ActionCreate, KindItemRequest) {
		t.Fatal("any valid role may create a request")
	}
	if CanPerform(Actor{ID: uuid.New(), Role: ""}, ActionCreate, KindItemRequest) {
		t.Fatal("absent role must deny")
	}
}

func TestCanPerformUserAdministration(t *testing.T) {
	if CanPerform(Actor{Role: "manager"}, ActionUpdate, KindUser) {
		t.Fatal("managers may not administer users")
	}
	if !CanPerform(Actor{Role: "admin"}, ActionUpdate, KindUser) {
		t.Fatal("admins administer users")
	}
	if CanPerform(Actor{Role: "admin"}, ActionDelete, KindUser) {
		t.Fatal("users are never hard-deleted")
	}
}

func TestCanEditOwnRequest(t *testing.T) {
	owner := uuid.New()
	actor := Actor{ID: owner, Role: "user"}
	other := Actor{ID: uuid.New(), Role: "user"}
	admin := Actor{ID: uuid.New(), Role: "admin"}

	if !CanEditOwnRequest(actor, owner, enums.RequestStatusDraft) {
		t.Fatal("owner edits draft")
	}
	if !CanEditOwnRequest(actor, owner, enums.RequestStatusPending) {
		t.Fatal("owner edits pending")
	}
	if CanEditOwnRequest(actor, owner, enums.RequestStatusApproved) {
		t.Fatal("owner cannot edit approved")
	}
	if CanEditOwnRequest(other, owner, enums.RequestStatusPending) {
		t.Fatal("non-owner user cannot edit")
	}
	if !CanEditOwnRequest(admin, owner, enums.RequestStatusFulfilled) {
		t.Fatal("admin edits regardless of state")
	}
}

func TestDenyProducesForbidden(t *testing.T) {
	err := Deny(ActionApprove, KindItemRequest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
