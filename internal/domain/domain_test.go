package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleSetEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		roles   []Role
		encoded string
	}{
		{name: "empty", roles: nil, encoded: ""},
		{name: "single", roles: []Role{RoleDealer}, encoded: "dealer"},
		{name: "multiple", roles: []Role{RoleAdmin, RoleDealer}, encoded: "admin,dealer"},
		{name: "all", roles: []Role{RoleAdmin, RoleDealer, RoleRentalCompany}, encoded: "admin,dealer,rental_company"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewRoleSet(tt.roles...)
			assert.Equal(t, tt.encoded, set.Encode())

			decoded := DecodeRoleSet(tt.encoded)
			assert.Equal(t, len(tt.roles), len(decoded))
			for _, role := range tt.roles {
				assert.True(t, decoded.Has(role))
			}
		})
	}
}

func TestDecodeRoleSetIgnoresWhitespace(t *testing.T) {
	set := DecodeRoleSet(" admin , dealer ,")
	assert.True(t, set.Has(RoleAdmin))
	assert.True(t, set.Has(RoleDealer))
	assert.Len(t, set, 2)
}

func TestIdentity(t *testing.T) {
	anon := Identity{}
	assert.False(t, anon.IsAuthenticated())
	assert.False(t, anon.Has(RoleAdmin))

	admin := Identity{UserID: "u1", Roles: NewRoleSet(RoleAdmin)}
	assert.True(t, admin.IsAuthenticated())
	assert.True(t, admin.Has(RoleAdmin))
	assert.False(t, admin.Has(RoleDealer))
}

func TestAuctionEnded(t *testing.T) {
	now := time.Now()
	auction := &Auction{EndTime: now.Add(time.Minute)}
	assert.False(t, auction.Ended(now))
	assert.True(t, auction.Ended(now.Add(time.Minute)))
	assert.True(t, auction.Ended(now.Add(time.Hour)))
}

func TestIsUserFacing(t *testing.T) {
	userFacing := []error{
		ErrNotFound,
		ErrUnauthorized,
		ErrForbidden,
		ErrAlreadyHighestBidder,
		ErrAuctionClosed,
		ErrConflict,
		ErrNoPoints,
		ErrInvalidInput,
		&BidTooLowError{Minimum: 100},
		fmt.Errorf("wrapped: %w", ErrInvalidInput),
	}
	for _, err := range userFacing {
		assert.True(t, IsUserFacing(err), "expected %v to be user facing", err)
	}

	assert.False(t, IsUserFacing(errors.New("mysql has gone away")))
	assert.False(t, IsUserFacing(nil))
}

func TestBidTooLowErrorMessage(t *testing.T) {
	err := &BidTooLowError{Minimum: 550000}
	assert.Contains(t, err.Error(), "550000.00")
}
