package policy

import (
	"testing"

	"waysfood-api/apperr"
	"waysfood-api/models"

	"github.com/stretchr/testify/assert"
)

var (
	customer      = Caller{ID: 1, Role: models.RoleCustomer}
	otherCustomer = Caller{ID: 2, Role: models.RoleCustomer}
	partner       = Caller{ID: 6, Role: models.RolePartner}
	otherPartner  = Caller{ID: 7, Role: models.RolePartner}
)

func sampleTx() *models.Transaction {
	return &models.Transaction{ID: 10, CustomerID: 1, RestaurantID: 6}
}

func TestOwns(t *testing.T) {
	tx := sampleTx()

	assert.True(t, Owns(customer, tx))
	assert.True(t, Owns(partner, tx))
	assert.False(t, Owns(otherCustomer, tx))
	assert.False(t, Owns(otherPartner, tx))
}

func TestOwnsMatchesSideByRole(t *testing.T) {
	// Customer 6 must not see partner 6's restaurant transactions.
	tx := sampleTx()
	assert.False(t, Owns(Caller{ID: 6, Role: models.RoleCustomer}, tx))
	assert.False(t, Owns(Caller{ID: 1, Role: models.RolePartner}, tx))
	assert.False(t, Owns(Caller{ID: 1, Role: "admin"}, tx))
}

func TestCanList(t *testing.T) {
	assert.NoError(t, CanList(partner, models.RolePartner))
	assert.NoError(t, CanList(customer, models.RoleCustomer))

	err := CanList(customer, models.RolePartner)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(CanList(partner, models.RoleCustomer)))
}

func TestCanView(t *testing.T) {
	tx := sampleTx()

	assert.NoError(t, CanView(customer, tx))
	assert.NoError(t, CanView(partner, tx))
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(CanView(otherPartner, tx)))
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(CanUpdate(otherCustomer, tx)))
}

func TestCanChangeDeliveryLocation(t *testing.T) {
	tx := sampleTx()

	assert.NoError(t, CanChangeDeliveryLocation(customer, tx))
	assert.Error(t, CanChangeDeliveryLocation(partner, tx))
	assert.Error(t, CanChangeDeliveryLocation(otherCustomer, tx))
}

func TestCanDeleteIsRoleOnly(t *testing.T) {
	assert.NoError(t, CanDelete(partner))
	assert.NoError(t, CanDelete(otherPartner))
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(CanDelete(customer)))
}

func TestCanManageProduct(t *testing.T) {
	p := &models.Product{ID: 10, UserID: 6}

	assert.NoError(t, CanManageProduct(partner, p))
	assert.Error(t, CanManageProduct(otherPartner, p))
	assert.Error(t, CanManageProduct(Caller{ID: 6, Role: models.RoleCustomer}, p))
}

func TestCanManageUser(t *testing.T) {
	assert.NoError(t, CanManageUser(customer, 1))
	assert.Error(t, CanManageUser(customer, 2))
}
