// Package policy decides whether a caller may read or mutate a transaction.
// Existence is the caller's responsibility: every check here assumes the
// transaction was already loaded.
package policy

import (
	"waysfood-api/apperr"
	"waysfood-api/models"
)

const msgAccessDenied = "access denied"

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   uint
	Role models.UserRole
}

func (c Caller) IsPartner() bool  { return c.Role == models.RolePartner }
func (c Caller) IsCustomer() bool { return c.Role == models.RoleCustomer }

// Owns reports whether the caller is the party of tx that matches its role:
// the restaurant for partners, the customer for customers.
func Owns(c Caller, tx *models.Transaction) bool {
	switch {
	case c.IsPartner():
		return tx.RestaurantID == c.ID
	case c.IsCustomer():
		return tx.CustomerID == c.ID
	default:
		return false
	}
}

// CanList rejects callers whose role differs from the listing's role.
func CanList(c Caller, role models.UserRole) error {
	if c.Role != role {
		return apperr.Forbidden(msgAccessDenied)
	}
	return nil
}

func CanView(c Caller, tx *models.Transaction) error {
	if !Owns(c, tx) {
		return apperr.Forbidden(msgAccessDenied)
	}
	return nil
}

// CanUpdate is the ownership half of an update; the state machine decides
// which status changes the caller's role may make.
func CanUpdate(c Caller, tx *models.Transaction) error {
	return CanView(c, tx)
}

// CanChangeDeliveryLocation allows only the owning customer.
func CanChangeDeliveryLocation(c Caller, tx *models.Transaction) error {
	if !c.IsCustomer() || !Owns(c, tx) {
		return apperr.Forbidden("only the customer can change the delivery location")
	}
	return nil
}

// CanDelete is role-gated only: any partner may delete.
func CanDelete(c Caller) error {
	if !c.IsPartner() {
		return apperr.Forbidden(msgAccessDenied)
	}
	return nil
}

// CanManageProduct allows only the partner who owns the product.
func CanManageProduct(c Caller, p *models.Product) error {
	if !c.IsPartner() || p.UserID != c.ID {
		return apperr.Forbidden("you have no permission to edit this resource")
	}
	return nil
}

// CanManageUser allows users to edit only their own account.
func CanManageUser(c Caller, userID uint) error {
	if c.ID != userID {
		return apperr.Forbidden("you have no permission to edit this resource")
	}
	return nil
}
