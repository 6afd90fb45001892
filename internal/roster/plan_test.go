package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Idempotent(t *testing.T) {
	current := []int64{1, 2, 3}

	plan, err := Build(current, []int64{1, 2, 3}, nil)
	require.NoError(t, err)

	assert.True(t, plan.Empty(), "目标和当前一致时不应该产生任何变更")
	assert.Empty(t, plan.ToAssign)
	assert.Empty(t, plan.ToUnassign)
}

func TestBuild_AssignAndUnassign(t *testing.T) {
	current := []int64{1, 2, 3}
	desired := []int64{2, 4, 5}

	plan, err := Build(current, desired, nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{4, 5}, plan.ToAssign)
	require.Len(t, plan.ToUnassign, 2)
	assert.Equal(t, int64(1), plan.ToUnassign[0].UserID)
	assert.Equal(t, int64(3), plan.ToUnassign[1].UserID)
}

func TestBuild_PreservesDesiredOrder(t *testing.T) {
	plan, err := Build(nil, []int64{9, 3, 7}, nil)
	require.NoError(t, err)

	assert.Equal(t, []int64{9, 3, 7}, plan.ToAssign)
}

func TestBuild_EmptyDesiredRemovesEveryone(t *testing.T) {
	plan, err := Build([]int64{1, 2}, []int64{}, nil)
	require.NoError(t, err)

	assert.Empty(t, plan.ToAssign)
	require.Len(t, plan.ToUnassign, 2)
	for _, removal := range plan.ToUnassign {
		assert.True(t, removal.ClearSiteRef)
	}
}

// 用户在同一站点的其他班次中仍有排班时，不能清除站点引用
func TestBuild_MultiShiftKeepsSiteRef(t *testing.T) {
	current := []int64{1, 2}
	desired := []int64{2}
	otherShiftCount := map[int64]int{1: 1}

	plan, err := Build(current, desired, otherShiftCount)
	require.NoError(t, err)

	require.Len(t, plan.ToUnassign, 1)
	assert.Equal(t, int64(1), plan.ToUnassign[0].UserID)
	assert.False(t, plan.ToUnassign[0].ClearSiteRef)
}

func TestBuild_LastShiftClearsSiteRef(t *testing.T) {
	plan, err := Build([]int64{1}, nil, map[int64]int{})
	require.NoError(t, err)

	require.Len(t, plan.ToUnassign, 1)
	assert.True(t, plan.ToUnassign[0].ClearSiteRef)
}

func TestBuild_RejectsDuplicateDesired(t *testing.T) {
	_, err := Build(nil, []int64{1, 2, 1}, nil)
	assert.Error(t, err)
}
