package service

import (
	"context"
	"testing"

	"waysfood-api/apperr"
	"waysfood-api/mocks"
	"waysfood-api/models"
	"waysfood-api/policy"
	"waysfood-api/repository"
	"waysfood-api/statemachine"
	"waysfood-api/testutil"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransactionServiceSuite struct {
	suite.Suite
	ctx context.Context
	db  *gorm.DB
	svc *TransactionService

	customer *models.User
	stranger *models.User
	partner  *models.User
	rival    *models.User
	sambal   *models.Product
	keju     *models.Product
}

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())

	ctrl := gomock.NewController(s.T())
	images := mocks.NewMockStore(ctrl)
	images.EXPECT().URL(gomock.Any()).DoAndReturn(func(key string) string {
		return "http://localhost:5000/uploads/" + key
	}).AnyTimes()

	s.svc = NewTransactionService(repository.NewStore(s.db), statemachine.Default(), images, zap.NewNop(), 0)

	s.customer = testutil.CreateUser(s.T(), s.db, "budi", models.RoleCustomer)
	s.stranger = testutil.CreateUser(s.T(), s.db, "sari", models.RoleCustomer)
	s.partner = testutil.CreateUser(s.T(), s.db, "asep", models.RolePartner)
	s.rival = testutil.CreateUser(s.T(), s.db, "joko", models.RolePartner)
	s.sambal = testutil.CreateProduct(s.T(), s.db, s.partner, "Geprek Sambal Matah", 18000)
	s.keju = testutil.CreateProduct(s.T(), s.db, s.partner, "Geprek Keju", 20000)
}

func caller(u *models.User) policy.Caller {
	return policy.Caller{ID: u.ID, Role: u.Role}
}

func (s *TransactionServiceSuite) create(lines ...LineRequest) *TransactionView {
	view, err := s.svc.Create(s.ctx, caller(s.customer), CreateInput{
		RestaurantID:     s.partner.ID,
		DeliveryLocation: "[106.82,-6.17]",
		Products:         lines,
	})
	s.Require().NoError(err)
	return view
}

func (s *TransactionServiceSuite) qtyByProduct(view *TransactionView) map[uint]int {
	out := map[uint]int{}
	for _, line := range view.Orders {
		out[line.ID] = line.Qty
	}
	return out
}

func (s *TransactionServiceSuite) requireKind(kind apperr.Kind, err error) {
	s.Require().Error(err)
	s.Equal(kind, apperr.KindOf(err), err.Error())
}

func (s *TransactionServiceSuite) TestCreateSnapshotsLines() {
	view := s.create(
		LineRequest{ProductID: s.sambal.ID, Qty: 2},
		LineRequest{ProductID: s.keju.ID, Qty: 1},
	)

	s.Equal(models.StatusWaitingApprove, view.Status)
	s.Equal(s.customer.ID, view.CustomerID)
	s.Equal(s.partner.ID, view.RestaurantID)
	s.Equal("[106.82,-6.17]", view.DeliveryLocation)
	s.Require().Len(view.Orders, 2)
	s.Equal(int64(56000), view.Total)
	s.Equal(map[uint]int{s.sambal.ID: 2, s.keju.ID: 1}, s.qtyByProduct(view))

	s.Require().NotNil(view.UserOrder)
	s.Equal("budi", view.UserOrder.FullName)
	s.Equal("budi@waysfood.test", view.UserOrder.Email)
	s.Require().NotNil(view.Restaurant)
	s.Equal("asep", view.Restaurant.FullName)

	for _, line := range view.Orders {
		s.Contains(line.Image, "http://localhost:5000/uploads/")
	}
}

func (s *TransactionServiceSuite) TestCreatePairsQuantitiesByID() {
	view := s.create(
		LineRequest{ProductID: s.keju.ID, Qty: 5},
		LineRequest{ProductID: 9999, Qty: 7},
		LineRequest{ProductID: s.sambal.ID, Qty: 3},
	)

	s.Len(view.Orders, 2)
	s.Equal(map[uint]int{s.keju.ID: 5, s.sambal.ID: 3}, s.qtyByProduct(view))
}

func (s *TransactionServiceSuite) TestCreateMergesDuplicateProducts() {
	view := s.create(
		LineRequest{ProductID: s.sambal.ID, Qty: 1},
		LineRequest{ProductID: s.sambal.ID, Qty: 2},
	)

	s.Require().Len(view.Orders, 1)
	s.Equal(3, view.Orders[0].Qty)
}

func (s *TransactionServiceSuite) TestCreateDropsOtherPartnersProducts() {
	foreign := testutil.CreateProduct(s.T(), s.db, s.rival, "Nasi Goreng", 15000)

	view := s.create(
		LineRequest{ProductID: s.sambal.ID, Qty: 1},
		LineRequest{ProductID: foreign.ID, Qty: 1},
	)

	s.Require().Len(view.Orders, 1)
	s.Equal(s.sambal.ID, view.Orders[0].ID)
}

func (s *TransactionServiceSuite) TestCreateWithNoResolvableProductsWritesNothing() {
	_, err := s.svc.Create(s.ctx, caller(s.customer), CreateInput{
		RestaurantID: s.partner.ID,
		Products:     []LineRequest{{ProductID: 9999, Qty: 1}},
	})
	s.requireKind(apperr.KindValidation, err)

	var count int64
	s.Require().NoError(s.db.Model(&models.Transaction{}).Count(&count).Error)
	s.Zero(count)
}

func (s *TransactionServiceSuite) TestCreateValidation() {
	cases := map[string]CreateInput{
		"missing restaurant": {Products: []LineRequest{{ProductID: s.sambal.ID, Qty: 1}}},
		"no products":        {RestaurantID: s.partner.ID},
		"zero qty":           {RestaurantID: s.partner.ID, Products: []LineRequest{{ProductID: s.sambal.ID, Qty: 0}}},
		"negative qty":       {RestaurantID: s.partner.ID, Products: []LineRequest{{ProductID: s.sambal.ID, Qty: -2}}},
		"zero product id":    {RestaurantID: s.partner.ID, Products: []LineRequest{{Qty: 1}}},
		"customer as partner": {
			RestaurantID: s.stranger.ID,
			Products:     []LineRequest{{ProductID: s.sambal.ID, Qty: 1}},
		},
	}
	for name, in := range cases {
		s.Run(name, func() {
			_, err := s.svc.Create(s.ctx, caller(s.customer), in)
			s.requireKind(apperr.KindValidation, err)
		})
	}
}

func (s *TransactionServiceSuite) TestCreateUnknownRestaurant() {
	_, err := s.svc.Create(s.ctx, caller(s.customer), CreateInput{
		RestaurantID: 424242,
		Products:     []LineRequest{{ProductID: s.sambal.ID, Qty: 1}},
	})
	s.requireKind(apperr.KindNotFound, err)
}

func (s *TransactionServiceSuite) TestSnapshotSurvivesCatalogChanges() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 2})

	s.Require().NoError(s.db.Model(&models.Product{}).Where("id = ?", s.sambal.ID).
		Updates(map[string]any{"price": 99000, "title": "Renamed"}).Error)

	got, err := s.svc.Get(s.ctx, caller(s.customer), view.ID)
	s.Require().NoError(err)
	s.Equal(int64(18000), got.Orders[0].Price)
	s.Equal("Geprek Sambal Matah", got.Orders[0].Title)
	s.Equal(int64(36000), got.Total)
}

func (s *TransactionServiceSuite) TestGetGatesOnOwnership() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1})

	_, err := s.svc.Get(s.ctx, caller(s.customer), view.ID)
	s.NoError(err)
	_, err = s.svc.Get(s.ctx, caller(s.partner), view.ID)
	s.NoError(err)

	_, err = s.svc.Get(s.ctx, caller(s.stranger), view.ID)
	s.requireKind(apperr.KindAuthorization, err)
	_, err = s.svc.Get(s.ctx, caller(s.rival), view.ID)
	s.requireKind(apperr.KindAuthorization, err)

	_, err = s.svc.Get(s.ctx, caller(s.stranger), 424242)
	s.requireKind(apperr.KindNotFound, err)
}

func (s *TransactionServiceSuite) TestGetIsIdempotent() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1}, LineRequest{ProductID: s.keju.ID, Qty: 4})

	first, err := s.svc.Get(s.ctx, caller(s.partner), view.ID)
	s.Require().NoError(err)
	second, err := s.svc.Get(s.ctx, caller(s.partner), view.ID)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *TransactionServiceSuite) TestListsAreRoleRestricted() {
	s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1})

	_, err := s.svc.ListForPartner(s.ctx, caller(s.customer))
	s.requireKind(apperr.KindAuthorization, err)
	_, err = s.svc.ListForCustomer(s.ctx, caller(s.partner))
	s.requireKind(apperr.KindAuthorization, err)

	mine, err := s.svc.ListForCustomer(s.ctx, caller(s.customer))
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.NotNil(mine[0].Restaurant)
	s.Nil(mine[0].UserOrder)

	received, err := s.svc.ListForPartner(s.ctx, caller(s.partner))
	s.Require().NoError(err)
	s.Require().Len(received, 1)
	s.NotNil(received[0].UserOrder)

	none, err := s.svc.ListForPartner(s.ctx, caller(s.rival))
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *TransactionServiceSuite) TestListReturnsTenNewestFirst() {
	var ids []uint
	for i := 0; i < 12; i++ {
		ids = append(ids, s.create(LineRequest{ProductID: s.sambal.ID, Qty: i + 1}).ID)
	}

	list, err := s.svc.ListForCustomer(s.ctx, caller(s.customer))
	s.Require().NoError(err)
	s.Require().Len(list, 10)
	for i, view := range list {
		s.Equal(ids[len(ids)-1-i], view.ID)
	}
}

func (s *TransactionServiceSuite) TestUpdateFollowsStateMachine() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1})
	onTheWay := models.StatusOnTheWay
	success := models.StatusSuccess

	_, err := s.svc.Update(s.ctx, caller(s.customer), view.ID, Patch{Status: &onTheWay})
	s.requireKind(apperr.KindValidation, err)

	updated, err := s.svc.Update(s.ctx, caller(s.partner), view.ID, Patch{Status: &onTheWay})
	s.Require().NoError(err)
	s.Equal(models.StatusOnTheWay, updated.Status)

	_, err = s.svc.Update(s.ctx, caller(s.partner), view.ID, Patch{Status: &success})
	s.requireKind(apperr.KindValidation, err)

	done, err := s.svc.Update(s.ctx, caller(s.customer), view.ID, Patch{Status: &success})
	s.Require().NoError(err)
	s.Equal(models.StatusSuccess, done.Status)

	history, err := s.svc.History(s.ctx, caller(s.customer), view.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal(models.StatusWaitingApprove, history[0].ToStatus)
	s.Equal(models.StatusWaitingApprove, history[1].FromStatus)
	s.Equal(models.StatusOnTheWay, history[1].ToStatus)
	s.Equal(s.partner.ID, history[1].ChangedBy)
	s.Equal(models.StatusSuccess, history[2].ToStatus)
}

func (s *TransactionServiceSuite) TestUpdateCheckOrder() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1})
	bogus := models.TransactionStatus("teleported")

	_, err := s.svc.Update(s.ctx, caller(s.partner), view.ID, Patch{})
	s.requireKind(apperr.KindValidation, err)

	_, err = s.svc.Update(s.ctx, caller(s.rival), 424242, Patch{Status: &bogus})
	s.requireKind(apperr.KindNotFound, err)

	_, err = s.svc.Update(s.ctx, caller(s.rival), view.ID, Patch{Status: &bogus})
	s.requireKind(apperr.KindAuthorization, err)

	_, err = s.svc.Update(s.ctx, caller(s.partner), view.ID, Patch{Status: &bogus})
	s.requireKind(apperr.KindValidation, err)
}

func (s *TransactionServiceSuite) TestUpdateDeliveryLocation() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1})
	location := "[106.9,-6.3]"

	_, err := s.svc.Update(s.ctx, caller(s.partner), view.ID, Patch{DeliveryLocation: &location})
	s.requireKind(apperr.KindAuthorization, err)

	updated, err := s.svc.Update(s.ctx, caller(s.customer), view.ID, Patch{DeliveryLocation: &location})
	s.Require().NoError(err)
	s.Equal(location, updated.DeliveryLocation)
	s.Equal(models.StatusWaitingApprove, updated.Status)

	onTheWay := models.StatusOnTheWay
	_, err = s.svc.Update(s.ctx, caller(s.partner), view.ID, Patch{Status: &onTheWay})
	s.Require().NoError(err)

	later := "[107.0,-6.4]"
	_, err = s.svc.Update(s.ctx, caller(s.customer), view.ID, Patch{DeliveryLocation: &later})
	s.requireKind(apperr.KindValidation, err)
}

func (s *TransactionServiceSuite) TestUpdateBumpsVersion() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1})
	cancel := models.StatusCancel

	_, err := s.svc.Update(s.ctx, caller(s.customer), view.ID, Patch{Status: &cancel})
	s.Require().NoError(err)

	var stored models.Transaction
	s.Require().NoError(s.db.First(&stored, view.ID).Error)
	s.Equal(2, stored.Version)
}

func (s *TransactionServiceSuite) TestDeleteCascades() {
	view := s.create(LineRequest{ProductID: s.sambal.ID, Qty: 1}, LineRequest{ProductID: s.keju.ID, Qty: 1})

	_, err := s.svc.Delete(s.ctx, caller(s.customer), view.ID)
	s.requireKind(apperr.KindAuthorization, err)

	_, err = s.svc.Delete(s.ctx, caller(s.partner), 424242)
	s.requireKind(apperr.KindNotFound, err)

	// Deletion is role-gated only.
	id, err := s.svc.Delete(s.ctx, caller(s.rival), view.ID)
	s.Require().NoError(err)
	s.Equal(view.ID, id)

	var lines, history int64
	s.Require().NoError(s.db.Model(&models.Order{}).Where("transaction_id = ?", view.ID).Count(&lines).Error)
	s.Require().NoError(s.db.Model(&models.TransactionHistory{}).Where("transaction_id = ?", view.ID).Count(&history).Error)
	s.Zero(lines)
	s.Zero(history)

	_, err = s.svc.Get(s.ctx, caller(s.customer), view.ID)
	s.requireKind(apperr.KindNotFound, err)
}
