package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestComputeAvailability(t *testing.T) {
	unavailable := ManualUnavailable

	tests := []struct {
		name      string
		manual    *ManualAvailability
		kitchenID *int64
		shopID    *int64
		want      bool
	}{
		{"无任何状态", nil, nil, nil, true},
		{"仅手动不可用", &unavailable, nil, nil, false},
		{"手动不可用且有厨房分配", &unavailable, ptr(int64(1)), nil, false},
		{"仅厨房分配", nil, ptr(int64(1)), nil, false},
		{"仅门店分配", nil, nil, ptr(int64(2)), false},
		{"清除手动不可用后恢复可用", nil, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAvailability(tt.manual, tt.kitchenID, tt.shopID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefreshAvailability(t *testing.T) {
	u := &User{}
	u.RefreshAvailability()
	assert.True(t, u.IsAvailable)

	u.SetSiteRef(SiteKindKitchen, 7)
	u.RefreshAvailability()
	assert.False(t, u.IsAvailable)
	assert.Equal(t, int64(7), *u.KitchenID)
	assert.Nil(t, u.ShopID)

	// 换到门店后厨房引用必须被清除
	u.SetSiteRef(SiteKindShop, 3)
	u.RefreshAvailability()
	assert.False(t, u.IsAvailable)
	assert.Nil(t, u.KitchenID)
	assert.Equal(t, int64(3), *u.ShopID)

	u.ClearSiteRef()
	u.RefreshAvailability()
	assert.True(t, u.IsAvailable)
}

func TestSiteID(t *testing.T) {
	u := &User{}
	assert.Nil(t, u.SiteID())

	u.SetSiteRef(SiteKindShop, 5)
	assert.Equal(t, int64(5), *u.SiteID())
}

func TestAssignActionBySiteKind(t *testing.T) {
	assert.Equal(t, ActionAssignedToKitchen, AssignAction(SiteKindKitchen))
	assert.Equal(t, ActionAssignedToShop, AssignAction(SiteKindShop))
	assert.Equal(t, ActionUnassignedFromKitchen, UnassignAction(SiteKindKitchen))
	assert.Equal(t, ActionUnassignedFromShop, UnassignAction(SiteKindShop))
}

func TestSiteIsOperating(t *testing.T) {
	site := &Site{OperatingShifts: []ShiftType{ShiftMorning, ShiftNight}}

	assert.True(t, site.IsOperating(ShiftMorning))
	assert.False(t, site.IsOperating(ShiftAfternoon))
}

func TestSiteTeam(t *testing.T) {
	site := &Site{
		Teams: []ShiftTeam{
			{ShiftType: ShiftMorning, UserIDs: []int64{1, 2}},
		},
	}

	assert.Equal(t, []int64{1, 2}, site.Team(ShiftMorning))
	assert.Empty(t, site.Team(ShiftNight))
}
