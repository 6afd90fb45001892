package domain

import (
	"time"
)

type SiteKind string

const (
	SiteKindKitchen SiteKind = "kitchen"
	SiteKindShop    SiteKind = "shop"
)

type ShiftType string

const (
	ShiftMorning   ShiftType = "早班"
	ShiftAfternoon ShiftType = "午班"
	ShiftNight     ShiftType = "晚班"
	ShiftFullDay   ShiftType = "全天"
)

// ShiftTeam 是某个站点在某个班次下的花名册，UserIDs 保持分配顺序
type ShiftTeam struct {
	ShiftType ShiftType `json:"shiftType"`
	UserIDs   []int64   `json:"userIDs"`
}

type Site struct {
	ID              int64       `json:"id"`
	Kind            SiteKind    `json:"kind"`
	Name            string      `json:"name"`
	Address         string      `json:"address"`
	ImagePath       *string     `json:"imagePath"`
	OperatingShifts []ShiftType `json:"operatingShifts"`
	Teams           []ShiftTeam `json:"teams"`
	IsDeleted       bool        `json:"isDeleted"`
	CreatedAt       time.Time   `json:"createdAt"`
	Version         int32       `json:"-"`
}

// IsOperating 判断站点是否开设了指定班次，只有开设的班次才允许存在花名册
func (s *Site) IsOperating(shiftType ShiftType) bool {
	for _, st := range s.OperatingShifts {
		if st == shiftType {
			return true
		}
	}
	return false
}

// Team 返回指定班次的花名册，班次不存在时返回空切片
func (s *Site) Team(shiftType ShiftType) []int64 {
	for _, team := range s.Teams {
		if team.ShiftType == shiftType {
			return team.UserIDs
		}
	}
	return []int64{}
}
