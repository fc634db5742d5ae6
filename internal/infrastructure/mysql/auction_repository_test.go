package mysql

import (
	"testing"
	"time"

	"github.com/amenelu/mekina/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestBuildFilterEmpty(t *testing.T) {
	where, args := buildFilter(domain.AuctionFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildFilterClauses(t *testing.T) {
	now := time.Now()
	filter := domain.AuctionFilter{
		Make:         "Toyota",
		MaxPrice:     900000,
		ApprovedOnly: true,
		OpenAfter:    now,
		ExcludeID:    "a1",
	}

	where, args := buildFilter(filter)
	assert.Contains(t, where, "c.is_approved = TRUE")
	assert.Contains(t, where, "a.end_time > ?")
	assert.Contains(t, where, "a.id != ?")
	assert.Contains(t, where, "c.make = ?")
	assert.Contains(t, where, "a.current_price <= ?")
	assert.Equal(t, []interface{}{now, "a1", "Toyota", 900000.0}, args)
}

func TestBuildFilterConditionColumn(t *testing.T) {
	// "condition" is a reserved word in MySQL; the cars table uses
	// car_condition instead.
	where, _ := buildFilter(domain.AuctionFilter{Condition: "used"})
	assert.Contains(t, where, "c.car_condition = ?")
	assert.NotContains(t, where, "c.condition")
}

func TestIsLockConflict(t *testing.T) {
	assert.True(t, isLockConflict(&mysql.MySQLError{Number: 1213}))
	assert.True(t, isLockConflict(&mysql.MySQLError{Number: 1205}))
	assert.False(t, isLockConflict(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isLockConflict(nil))
	assert.False(t, isLockConflict(assert.AnError))
}
