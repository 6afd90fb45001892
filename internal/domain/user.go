package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin       Role = "管理员"
	RoleChef        Role = "厨师"
	RoleCashier     Role = "收银员"
	RoleCleaner     Role = "保洁员"
	RoleTraineeChef Role = "实习厨师"
	RoleDriver      Role = "司机"
)

type ManualAvailability string

// 手动可用性只有"不可用"一个取值，处于可用状态时该字段置空
const ManualUnavailable ManualAvailability = "不可用"

type User struct {
	ID                 int64               `json:"id"`
	Username           string              `json:"username"`
	PasswordHash       string              `json:"-"`
	FullName           string              `json:"fullName"`
	Email              string              `json:"email"`
	Role               Role                `json:"role"`
	ManualAvailability *ManualAvailability `json:"manualAvailability"`
	KitchenID          *int64              `json:"kitchenID"`
	ShopID             *int64              `json:"shopID"`
	IsAvailable        bool                `json:"isAvailable"`
	AvatarPath         *string             `json:"avatarPath"`
	CreatedAt          time.Time           `json:"createdAt"`
	Version            int32               `json:"-"`
}

// ComputeAvailability 计算用户的实际可用性，规则按优先级依次判断：
// 1. 被手动设置为不可用 -> 不可用
// 2. 持有任意站点分配（厨房或门店）-> 不可用
// 3. 其余情况 -> 可用
func ComputeAvailability(manual *ManualAvailability, kitchenID, shopID *int64) bool {
	if manual != nil && *manual == ManualUnavailable {
		return false
	}
	if kitchenID != nil || shopID != nil {
		return false
	}
	return true
}

// RefreshAvailability 是唯一允许写 IsAvailable 的路径，
// 任何修改了 ManualAvailability / KitchenID / ShopID 的代码都必须在落库前调用它
func (u *User) RefreshAvailability() {
	u.IsAvailable = ComputeAvailability(u.ManualAvailability, u.KitchenID, u.ShopID)
}

// SiteID 返回用户当前分配的站点 ID，没有分配时返回 nil
func (u *User) SiteID() *int64 {
	if u.KitchenID != nil {
		return u.KitchenID
	}
	return u.ShopID
}

// SetSiteRef 按站点类型设置站点引用，用户最多只能持有一个站点引用
func (u *User) SetSiteRef(kind SiteKind, siteID int64) {
	switch kind {
	case SiteKindKitchen:
		u.KitchenID = &siteID
		u.ShopID = nil
	case SiteKindShop:
		u.ShopID = &siteID
		u.KitchenID = nil
	}
}

func (u *User) ClearSiteRef() {
	u.KitchenID = nil
	u.ShopID = nil
}
