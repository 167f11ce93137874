package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError(CodeNotFound, "leave request not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))

	wrapped := fmt.Errorf("load: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	de, ok := AsDomainError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "leave request not found", de.Message)
}

func TestDateRange(t *testing.T) {
	d := func(s string) time.Time {
		v, err := ParseDate(s)
		require.NoError(t, err)
		return v
	}

	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewDateRange(d("2024-03-10"), d("2024-03-09"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("single day range", func(t *testing.T) {
		r, err := NewDateRange(d("2024-03-10"), d("2024-03-10"))
		require.NoError(t, err)
		assert.Equal(t, 1, r.Days())
	})

	t.Run("closed interval overlap", func(t *testing.T) {
		a, _ := NewDateRange(d("2024-03-01"), d("2024-03-05"))
		b, _ := NewDateRange(d("2024-03-05"), d("2024-03-08"))
		c, _ := NewDateRange(d("2024-03-06"), d("2024-03-08"))
		assert.True(t, a.Overlaps(b))
		assert.True(t, b.Overlaps(a))
		assert.False(t, a.Overlaps(c))
	})

	t.Run("each day", func(t *testing.T) {
		r, _ := NewDateRange(d("2024-02-28"), d("2024-03-01"))
		var days []string
		r.EachDay(func(day time.Time) { days = append(days, day.Format(DateLayout)) })
		assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01"}, days)
	})

	t.Run("invalid date string", func(t *testing.T) {
		_, err := ParseDate("10/03/2024")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 1000}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.NotNil(t, f.Filters)
	assert.Equal(t, 0, f.Offset())

	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)
}

func TestAggregate_PersistedVersion(t *testing.T) {
	root := NewBaseAggregateRoot()
	assert.Equal(t, 1, root.Version)
	assert.False(t, root.IsPersisted())

	root.IncrementVersion()
	assert.Equal(t, 1, root.PersistedVersion(), "unsaved aggregates assume one change")

	root.MarkPersisted()
	assert.True(t, root.IsPersisted())
	root.IncrementVersion()
	root.IncrementVersion()
	assert.Equal(t, 4, root.Version)
	assert.Equal(t, 2, root.PersistedVersion())
}

func TestBaseAggregateRoot_IsAggregateRoot(t *testing.T) {
	root := NewBaseAggregateRoot()
	var agg AggregateRoot = &root

	before := root.UpdatedAt
	agg.IncrementVersion()
	assert.Equal(t, 2, agg.GetVersion())
	assert.False(t, root.UpdatedAt.Before(before))

	e := NewBaseDomainEvent("leave.request.submitted", "LeaveRequest", root.ID, root.ID)
	agg.AddDomainEvent(&e)
	require.Len(t, agg.GetDomainEvents(), 1)
	assert.Equal(t, root.ID, agg.GetDomainEvents()[0].AggregateID())
	agg.ClearDomainEvents()
	assert.Empty(t, agg.GetDomainEvents())
}
