package budget_item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWouldExceedBudget(t *testing.T) {
	t.Run("should flag an amount above the remaining allocation", func(t *testing.T) {
		// 100 allocated, 80 spent, 20 remaining
		assert.True(t, WouldExceedBudget(100, 80, 25))
	})

	t.Run("should allow an amount that exactly consumes the allocation", func(t *testing.T) {
		assert.False(t, WouldExceedBudget(100, 80, 20))
	})

	t.Run("should flag any amount on a fully spent allocation", func(t *testing.T) {
		assert.True(t, WouldExceedBudget(100, 100, 0.01))
	})
}

func TestIsRepeatOverage(t *testing.T) {
	t.Run("should flag an overage on an already-tracked target", func(t *testing.T) {
		assert.True(t, IsRepeatOverage(100, 80, 25))
	})

	t.Run("should not flag the first expense even when it overshoots", func(t *testing.T) {
		assert.False(t, IsRepeatOverage(100, 0, 150))
	})

	t.Run("should not flag an amount that fits", func(t *testing.T) {
		assert.False(t, IsRepeatOverage(100, 80, 20))
	})
}

func TestCheckGuards(t *testing.T) {
	t.Run("should carry both verdicts and the remaining allocation", func(t *testing.T) {
		result := CheckGuards(100, 80, 25)

		assert.True(t, result.ExceedsBudget)
		assert.True(t, result.RepeatOverage)
		assert.Equal(t, 20.0, result.Remaining)
	})

	t.Run("should report a negative remaining when already overspent", func(t *testing.T) {
		result := CheckGuards(100, 130, 1)

		assert.True(t, result.ExceedsBudget)
		assert.Equal(t, -30.0, result.Remaining)
	})
}
