package domain

import (
	"time"
)

type ActionKind string

const (
	ActionAssignedToKitchen     ActionKind = "assigned_to_kitchen"
	ActionUnassignedFromKitchen ActionKind = "unassigned_from_kitchen"
	ActionAssignedToShop        ActionKind = "assigned_to_shop"
	ActionUnassignedFromShop    ActionKind = "unassigned_from_shop"
	ActionAvailabilityUpdated   ActionKind = "availability_updated"
)

// AssignAction 返回分配到某类站点对应的操作类型
func AssignAction(kind SiteKind) ActionKind {
	if kind == SiteKindKitchen {
		return ActionAssignedToKitchen
	}
	return ActionAssignedToShop
}

// UnassignAction 返回从某类站点移除对应的操作类型
func UnassignAction(kind SiteKind) ActionKind {
	if kind == SiteKindKitchen {
		return ActionUnassignedFromKitchen
	}
	return ActionUnassignedFromShop
}

// AvailabilityHistoryEntry 记录每一次实际可用性发生变化的事件，只追加不修改
type AvailabilityHistoryEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userID"`
	OccurredAt  time.Time `json:"occurredAt"`
	IsAvailable bool      `json:"isAvailable"`
	Reason      string    `json:"reason"`
}

// ActionHistoryEntry 记录对用户执行过的分配类操作，只追加不修改
type ActionHistoryEntry struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userID"`
	OccurredAt time.Time  `json:"occurredAt"`
	Action     ActionKind `json:"action"`
	Detail     string     `json:"detail"`
}

// SalaryHistoryEntry 的金额以分为单位，避免浮点误差
type SalaryHistoryEntry struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userID"`
	Amount        int64     `json:"amount"`
	EffectiveDate time.Time `json:"effectiveDate"`
	CreatedAt     time.Time `json:"createdAt"`
}
