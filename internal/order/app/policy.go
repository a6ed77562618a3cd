package app

import (
	"github.com/dwikikusuma/nomino/internal/auth"
	"github.com/dwikikusuma/nomino/internal/order/domain"
)

type Action string

const (
	ActionPlace        Action = "place"
	ActionView         Action = "view"
	ActionCancel       Action = "cancel"
	ActionUpdateStatus Action = "update_status"
)

// Resource is what a rule needs to know about the cart or order acted on.
type Resource struct {
	OwnerID string
	Status  domain.Status
}

type Decision struct {
	Allowed bool
	Kind    Kind
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(kind Kind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// Err is nil for an allowed decision.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return newError(d.Kind, d.Reason)
}

// Authorize is the single rule table for every order operation.
func Authorize(u auth.User, res Resource, act Action) Decision {
	owner := u.ID != "" && u.ID == res.OwnerID

	switch act {
	case ActionPlace:
		if !owner {
			return deny(KindForbidden, "You can only create an order for your own cart!")
		}
		return allow()

	case ActionView:
		if u.IsStaff || owner {
			return allow()
		}
		return deny(KindNotFound, "order not found")

	case ActionCancel:
		// Staff override has no state guard, Delivered included.
		if u.IsStaff {
			return allow()
		}
		if !owner {
			return deny(KindForbidden, "You can only cancel your own order!")
		}
		if res.Status == domain.StatusDelivered {
			return deny(KindInvalidTransition, "Your product is already delivered, you can't cancel it!")
		}
		return allow()

	case ActionUpdateStatus:
		if !u.IsStaff {
			return deny(KindForbidden, "You are not allowed to update the order!")
		}
		return allow()
	}

	return deny(KindForbidden, "unknown action")
}
