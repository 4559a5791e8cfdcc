package draft

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/service/draft"
	"github.com/hospiq/scheduling-api/pkg/httputil"
)

type Handler struct {
	drafts *draft.Service
}

func NewHandler(drafts *draft.Service) *Handler {
	return &Handler{drafts: drafts}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	drafts := r.Group("/drafts")
	{
		drafts.POST("", h.OpenDraft)
		drafts.GET("", h.ListArchivedDrafts)
		drafts.GET("/:key", h.GetDraft)
		drafts.PUT("/:key/patient", h.SetPatient)
		drafts.PUT("/:key/department", h.SetDepartment)
		drafts.PUT("/:key/slot", h.UpdateSlot)
		drafts.POST("/:key/confirm", h.ConfirmDraft)
		drafts.POST("/:key/abandon", h.AbandonDraft)
	}
}

func (h *Handler) OpenDraft(c *gin.Context) {
	var req model.OpenDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	d, err := h.drafts.Open(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, d)
}

func (h *Handler) GetDraft(c *gin.Context) {
	d, err := h.drafts.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) SetPatient(c *gin.Context) {
	var req model.SetDraftPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid patient ID")
		return
	}

	d, err := h.drafts.SetPatient(c.Request.Context(), c.Param("key"), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) SetDepartment(c *gin.Context) {
	var req model.SetDraftDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}
	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid department ID")
		return
	}

	d, err := h.drafts.SetDepartment(c.Request.Context(), c.Param("key"), departmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	var req model.UpdateDraftSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	d, err := h.drafts.UpdateSlot(c.Request.Context(), c.Param("key"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) ConfirmDraft(c *gin.Context) {
	d, err := h.drafts.Confirm(c.Request.Context(), c.Param("key"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) AbandonDraft(c *gin.Context) {
	d, err := h.drafts.Abandon(c.Request.Context(), c.Param("key"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, d)
}

// ListArchivedDrafts exposes terminal drafts for conversion analytics.
func (h *Handler) ListArchivedDrafts(c *gin.Context) {
	hospitalID, err := uuid.Parse(c.Query("hospital_id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "hospital_id is required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	drafts, err := h.drafts.ListArchived(c.Request.Context(), hospitalID, limit, offset)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, drafts)
}
