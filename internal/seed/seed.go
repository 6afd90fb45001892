// Package seed 往数据库中插入一套可以直接演示的数据：
// 一批随机员工、几个厨房和门店，以及通过协调器分配好的花名册。
package seed

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/utils"
)

// SeedDemoData 插入 userCount 个随机用户和 siteCount 个随机站点，
// 然后为每个站点的每个开设班次随机分配人员。
// 分配走 repository 的协调器，因此派生可用性、历史和通知都会正常产生。
func SeedDemoData(cfg *config.Config, repo *repository.Repository, userCount, siteCount int) {
	users := make([]*domain.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机用户", "error", err)
			continue
		}

		if err := repo.CreateUser(user); err != nil {
			slog.Error("无法插入用户", "error", err)
			continue
		}

		users = append(users, user)
	}
	slog.Info("插入用户成功", "count", len(users))

	sites := make([]*domain.Site, 0, siteCount)
	for i := 0; i < siteCount; i++ {
		site := utils.GenerateRandomSite()
		if err := repo.CreateSite(site); err != nil {
			slog.Error("无法插入站点", "error", err)
			continue
		}

		sites = append(sites, site)
	}
	slog.Info("插入站点成功", "count", len(sites))

	if len(users) == 0 || len(sites) == 0 {
		return
	}

	// 每个用户最多属于一个站点，因此先把用户随机洗牌再按顺序消耗，
	// 避免把同一个人分配到两个站点时触发不可用错误
	rand.Shuffle(len(users), func(i, j int) {
		users[i], users[j] = users[j], users[i]
	})

	next := 0
	assignedCount := 0
	for _, site := range sites {
		for _, shiftType := range site.OperatingShifts {
			if next >= len(users) {
				break
			}

			teamSize := rand.Intn(3) + 1
			if next+teamSize > len(users) {
				teamSize = len(users) - next
			}

			desired := make([]int64, 0, teamSize)
			for _, user := range users[next : next+teamSize] {
				desired = append(desired, user.ID)
			}
			next += teamSize

			if _, _, err := repo.SetShiftRoster(context.Background(), site.ID, shiftType, desired); err != nil {
				slog.Error("无法分配花名册", "site", site.Name, "shiftType", shiftType, "error", err)
				continue
			}

			assignedCount += teamSize
		}
	}
	slog.Info("分配花名册成功", "count", assignedCount)
}

// SeedSalaries 为所有用户各插入一笔随机的初始薪资记录
func SeedSalaries(repo *repository.Repository) {
	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("无法获取用户列表", "error", err)
		return
	}

	cnt := 0
	for _, user := range users {
		entry := &domain.SalaryHistoryEntry{
			UserID:        user.ID,
			Amount:        utils.GenerateRandomSalaryAmount(),
			EffectiveDate: user.CreatedAt,
		}
		if err := repo.InsertSalaryHistory(entry); err != nil {
			slog.Error("无法插入薪资记录", "error", err)
			continue
		}
		cnt++
	}

	slog.Info("插入薪资记录成功", "count", cnt)
}
