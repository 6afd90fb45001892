package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/staffing-manager/backend/internal/utils"
)

func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind            string   `json:"kind" validate:"required,oneof=kitchen shop"`
		Name            string   `json:"name" validate:"required"`
		Address         string   `json:"address" validate:"required"`
		OperatingShifts []string `json:"operatingShifts" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	operatingShifts := make([]domain.ShiftType, 0, len(req.OperatingShifts))
	for _, st := range req.OperatingShifts {
		operatingShifts = append(operatingShifts, domain.ShiftType(st))
	}
	if err := utils.ValidateOperatingShifts(operatingShifts); err != nil {
		h.badRequest(w, r, err)
		return
	}

	site := &domain.Site{
		Kind:            domain.SiteKind(req.Kind),
		Name:            req.Name,
		Address:         req.Address,
		OperatingShifts: operatingShifts,
	}

	if err := h.repository.CreateSite(site); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "站点创建成功", site)
}

func (h *Handler) GetAllSites(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != string(domain.SiteKindKitchen) && kind != string(domain.SiteKindShop) {
		h.errorResponse(w, r, "站点类型无效")
		return
	}

	sites, err := h.repository.GetAllSites(domain.SiteKind(kind))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取站点列表成功", sites)
}

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)
	h.successResponse(w, r, "获取站点信息成功", site)
}

func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)

	var req struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		site.Name = *req.Name
	}
	if req.Address != nil {
		site.Address = *req.Address
	}

	if err := h.repository.UpdateSite(site); err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			h.errorResponse(w, r, "更新站点信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新站点信息成功", site)
}

// DeleteSite 软删除站点，同时解除该站点所有班次下的人员分配
func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)

	if err := h.repository.SoftDeleteSite(r.Context(), site.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSiteNotFound):
			h.errorResponse(w, r, "站点不存在")
		case errors.Is(err, repository.ErrEditConflict):
			h.errorResponse(w, r, "删除站点失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除站点成功", nil)
}

func (h *Handler) UploadSiteImage(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)

	path, err := h.saveUploadedImage(r, "image")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	site.ImagePath = &path
	if err := h.repository.UpdateSite(site); err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			h.errorResponse(w, r, "上传站点图片失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "上传站点图片成功", site)
}

// AssignUsers 一次性设置站点某个班次的完整花名册。
// 请求体给出期望的完整名单，新增和移除由服务端对比现有名单后得出。
func (h *Handler) AssignUsers(w http.ResponseWriter, r *http.Request) {
	site := r.Context().Value(SiteCtx).(*domain.Site)

	var req struct {
		ShiftType string `json:"shiftType" validate:"required,oneof=早班 午班 晚班 全天"`
		// 空名单是合法输入，表示把该班次的人全部移除
		UserIDs []int64 `json:"userIDs"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateRosterUserIDs(req.UserIDs); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assigned, unassigned, err := h.repository.SetShiftRoster(r.Context(), site.ID, domain.ShiftType(req.ShiftType), req.UserIDs)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSiteNotFound):
			h.errorResponse(w, r, "站点不存在")
		case errors.Is(err, repository.ErrInvalidShiftType):
			h.errorResponse(w, r, "该站点未开设此班次")
		case errors.Is(err, repository.ErrUserNotFound):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, repository.ErrUserUnavailable):
			h.errorResponse(w, r, err.Error())
		case errors.Is(err, repository.ErrEditConflict):
			h.errorResponse(w, r, "分配人员失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "分配人员成功", map[string]any{
		"assigned":   assigned,
		"unassigned": unassigned,
	})
}
