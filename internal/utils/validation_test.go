package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
)

func TestValidateOperatingShifts(t *testing.T) {
	assert.NoError(t, ValidateOperatingShifts([]domain.ShiftType{domain.ShiftMorning, domain.ShiftNight}))
	assert.Error(t, ValidateOperatingShifts(nil))
	assert.Error(t, ValidateOperatingShifts([]domain.ShiftType{domain.ShiftMorning, domain.ShiftMorning}))
	assert.Error(t, ValidateOperatingShifts([]domain.ShiftType{"通宵班"}))
}

func TestValidateRosterUserIDs(t *testing.T) {
	assert.NoError(t, ValidateRosterUserIDs([]int64{1, 2, 3}))
	assert.NoError(t, ValidateRosterUserIDs(nil))
	assert.Error(t, ValidateRosterUserIDs([]int64{1, 2, 1}))
}

func TestGenerateRandomOperatingShifts(t *testing.T) {
	for i := 0; i < 20; i++ {
		shifts := GenerateRandomOperatingShifts()
		require.NotEmpty(t, shifts)
		assert.NoError(t, ValidateOperatingShifts(shifts))
	}
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	username := GenerateUsernameFromChineseName("张伟")
	assert.NotEmpty(t, username)
	for _, r := range username {
		assert.True(t, r < 128, "用户名应该只包含 ASCII 字符")
	}
}
