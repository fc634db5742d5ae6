package services

import (
	"context"
	"testing"
	"time"

	"github.com/amenelu/mekina/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingFixture struct {
	cars     *fakeCarStore
	users    *fakeUserStore
	rentals  *fakeRentalStore
	auctions *fakeAuctionStore
	notifier *fakeNotifier
	listings *ListingService
}

func newListingFixture() *listingFixture {
	cars := newFakeCarStore()
	users := newFakeUserStore()
	rentals := &fakeRentalStore{}
	auctions := newFakeAuctionStore()
	notifier := &fakeNotifier{}
	ledger, _ := newTestLedger(auctions)

	return &listingFixture{
		cars:     cars,
		users:    users,
		rentals:  rentals,
		auctions: auctions,
		notifier: notifier,
		listings: NewListingService(cars, users, rentals, auctions, ledger, notifier, nopLogger{}),
	}
}

func auctionSubmission() CarSubmission {
	return CarSubmission{
		Make:        "Toyota",
		Model:       "Corolla",
		Year:        2021,
		ListingType: domain.ListingAuction,
		StartPrice:  500000,
		EndTime:     time.Now().Add(72 * time.Hour),
	}
}

func TestSubmitCarAuction(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()

	car, err := f.listings.SubmitCar(ctx, identity("seller-1"), auctionSubmission())
	require.NoError(t, err)
	assert.False(t, car.IsApproved, "submissions start unapproved")
	assert.Equal(t, "seller-1", car.OwnerID)

	auction, err := f.auctions.GetAuctionByCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, 500000.0, auction.StartPrice)
}

func TestSubmitCarRental(t *testing.T) {
	f := newListingFixture()

	sub := auctionSubmission()
	sub.ListingType = domain.ListingRental
	sub.PricePerDay = 3500

	car, err := f.listings.SubmitCar(context.Background(), identity("seller-1"), sub)
	require.NoError(t, err)

	rentals, err := f.rentals.AvailableRentals(context.Background())
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, car.ID, rentals[0].CarID)
	assert.Equal(t, 3500.0, rentals[0].PricePerDay)
}

func TestSubmitCarValidation(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()

	_, err := f.listings.SubmitCar(ctx, domain.Identity{}, auctionSubmission())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	sub := auctionSubmission()
	sub.Make = ""
	_, err = f.listings.SubmitCar(ctx, identity("seller-1"), sub)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sub = auctionSubmission()
	sub.ListingType = "lease"
	_, err = f.listings.SubmitCar(ctx, identity("seller-1"), sub)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApproveCar(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()

	car, err := f.listings.SubmitCar(ctx, identity("seller-1"), auctionSubmission())
	require.NoError(t, err)

	err = f.listings.ApproveCar(ctx, identity("seller-1"), car.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.listings.ApproveCar(ctx, identity("admin", domain.RoleAdmin), car.ID))

	approved, err := f.cars.GetCar(ctx, car.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	// The owner gets pointed at the live auction page.
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "seller-1", f.notifier.sent[0].UserID)
	auction, err := f.auctions.GetAuctionByCar(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "/auctions/"+auction.ID, f.notifier.sent[0].Link)
}

func TestPendingCars(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()

	_, err := f.listings.SubmitCar(ctx, identity("seller-1"), auctionSubmission())
	require.NoError(t, err)

	_, err = f.listings.PendingCars(ctx, identity("u1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	pending, err := f.listings.PendingCars(ctx, identity("admin", domain.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestDashboard(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()

	f.users.addUser(&domain.User{ID: "u1", Roles: domain.NewRoleSet()})
	f.users.addUser(&domain.User{ID: "admin", Roles: domain.NewRoleSet(domain.RoleAdmin)})

	_, err := f.listings.SubmitCar(ctx, identity("u1"), auctionSubmission())
	require.NoError(t, err)

	_, err = f.listings.Dashboard(ctx, identity("u1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stats, err := f.listings.Dashboard(ctx, identity("admin", domain.RoleAdmin))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.UserCount)
	assert.Equal(t, 1, stats.ActiveAuctions)
	assert.Equal(t, 1, stats.PendingApprovals)
}

func TestEditUser(t *testing.T) {
	f := newListingFixture()
	ctx := context.Background()

	f.users.addUser(&domain.User{ID: "u1", Username: "girma", Email: "girma@example.com", Roles: domain.NewRoleSet()})
	f.users.addUser(&domain.User{ID: "admin", Username: "admin", Roles: domain.NewRoleSet(domain.RoleAdmin)})

	admin := identity("admin", domain.RoleAdmin)

	edit := UserEdit{
		Username: "girma",
		Email:    "girma@example.com",
		Roles:    domain.NewRoleSet(domain.RoleDealer),
		Points:   5,
	}
	user, err := f.listings.EditUser(ctx, admin, "u1", edit)
	require.NoError(t, err)
	assert.True(t, user.Roles.Has(domain.RoleDealer))
	assert.Equal(t, 5, user.Points)

	// Admins cannot strip their own admin role.
	_, err = f.listings.EditUser(ctx, admin, "admin", UserEdit{Username: "admin", Roles: domain.NewRoleSet()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	edit.Points = -1
	_, err = f.listings.EditUser(ctx, admin, "u1", edit)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.listings.EditUser(ctx, identity("u1"), "u1", edit)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
