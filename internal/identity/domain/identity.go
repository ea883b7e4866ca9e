// Package domain holds the caller identity the storefront core receives from an
// upstream authenticator, and the caller-side policies evaluated against it.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return r, nil
	case "":
		return RoleBuyer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Identity is an already-authenticated caller.
type Identity struct {
	ID              string
	Role            Role
	OwnedProductIDs map[string]struct{}
}

func New(id string, role Role, owned ...string) Identity {
	set := make(map[string]struct{}, len(owned))
	for _, p := range owned {
		if p = strings.TrimSpace(p); p != "" {
			set[p] = struct{}{}
		}
	}
	return Identity{ID: id, Role: role, OwnedProductIDs: set}
}

func (i Identity) Anonymous() bool { return i.ID == "" }

// Owns reports whether the product is listed by this identity, either through
// the owned set or the product's owner reference.
func (i Identity) Owns(productID, ownerID string) bool {
	if _, ok := i.OwnedProductIDs[productID]; ok {
		return true
	}
	return ownerID != "" && ownerID == i.ID
}
