// Package roster 实现花名册调整的纯计算部分：
// 给定某个站点某个班次的当前花名册和目标花名册，计算出需要分配、
// 需要移除的用户，以及被移除的用户是否应该清除站点引用。
// 所有数据库读写都在 repository 中完成，这里不依赖任何存储。
package roster

import (
	"fmt"
	"slices"
)

// Removal 描述一个被移除出班次的用户。
// 当该用户在同一站点的其他班次中仍然持有排班时，不能清除他的站点引用，
// 只有在站点的所有班次中都不再出现时才置 ClearSiteRef 为 true。
type Removal struct {
	UserID       int64
	ClearSiteRef bool
}

type Plan struct {
	ToAssign   []int64
	ToUnassign []Removal
}

// Empty 为 true 表示目标花名册和当前花名册一致，不需要任何写入
func (p *Plan) Empty() bool {
	return len(p.ToAssign) == 0 && len(p.ToUnassign) == 0
}

// Build 计算从 current 到 desired 的调整计划。
// otherShiftCount 是每个用户在同一站点的其他班次中出现的次数，
// 由调用方在同一个事务中统计得到。
// desired 中的重复 ID 视为非法输入。
func Build(current, desired []int64, otherShiftCount map[int64]int) (*Plan, error) {
	seen := make(map[int64]bool, len(desired))
	for _, id := range desired {
		if seen[id] {
			return nil, fmt.Errorf("目标花名册中用户 %d 重复出现", id)
		}
		seen[id] = true
	}

	plan := &Plan{
		ToAssign:   make([]int64, 0, len(desired)),
		ToUnassign: make([]Removal, 0, len(current)),
	}

	// 保持 desired 中的顺序，方便花名册按提交顺序展示
	for _, id := range desired {
		if !slices.Contains(current, id) {
			plan.ToAssign = append(plan.ToAssign, id)
		}
	}

	for _, id := range current {
		if seen[id] {
			continue
		}
		plan.ToUnassign = append(plan.ToUnassign, Removal{
			UserID:       id,
			ClearSiteRef: otherShiftCount[id] == 0,
		})
	}

	return plan, nil
}
