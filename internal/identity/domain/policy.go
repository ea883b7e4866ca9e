package domain

import "errors"

var ErrForbidden = errors.New("forbidden")

// CanManageProducts allows admins and sellers to list and edit products.
func CanManageProducts(id Identity) bool {
	return !id.Anonymous() && (id.Role == RoleAdmin || id.Role == RoleSeller)
}

// CanModifyProduct allows admins, or the seller owning the product.
func CanModifyProduct(id Identity, productID, ownerID string) bool {
	if id.Anonymous() {
		return false
	}
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleSeller:
		return id.Owns(productID, ownerID)
	default:
		return false
	}
}

// CanAddToCart forbids a seller from buying their own listing.
func CanAddToCart(id Identity, productID, ownerID string) bool {
	return id.Role != RoleSeller || !id.Owns(productID, ownerID)
}

// CanCheckout requires a known purchaser.
func CanCheckout(id Identity) bool {
	return !id.Anonymous()
}
