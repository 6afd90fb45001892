package utils

import (
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
)

var validShiftTypes = []domain.ShiftType{
	domain.ShiftMorning,
	domain.ShiftAfternoon,
	domain.ShiftNight,
	domain.ShiftFullDay,
}

// ValidateOperatingShifts 检查站点开设的班次集合：至少一个、没有重复、全部是已知班次
func ValidateOperatingShifts(shifts []domain.ShiftType) error {
	if len(shifts) == 0 {
		return fmt.Errorf("站点至少需要开设一个班次")
	}

	seen := make(map[domain.ShiftType]bool)
	for _, st := range shifts {
		if !slices.Contains(validShiftTypes, st) {
			return fmt.Errorf("未知的班次类型: %s", st)
		}
		if seen[st] {
			return fmt.Errorf("班次 %s 重复出现", st)
		}
		seen[st] = true
	}

	return nil
}

// ValidateRosterUserIDs 检查期望花名册中是否存在重复的用户
func ValidateRosterUserIDs(userIDs []int64) error {
	seen := make(map[int64]bool)
	for _, id := range userIDs {
		if seen[id] {
			return fmt.Errorf("用户 %d 在名单中重复出现", id)
		}
		seen[id] = true
	}
	return nil
}
