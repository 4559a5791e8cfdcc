package doctor

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/service/availability"
	"github.com/hospiq/scheduling-api/internal/service/directory"
	"github.com/hospiq/scheduling-api/pkg/httputil"
)

type Handler struct {
	directory    *directory.Service
	availability *availability.Service
}

func NewHandler(directory *directory.Service, availability *availability.Service) *Handler {
	return &Handler{directory: directory, availability: availability}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.CreateDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id", h.UpdateDoctor)
		doctors.PUT("/:id/status", h.UpdateDoctorStatus)
		doctors.DELETE("/:id", h.DeleteDoctor)
		doctors.POST("/:id/availability", h.CreateAvailabilityRule)
		doctors.GET("/:id/availability", h.ListAvailabilityRules)
		doctors.GET("/:id/slots", h.ListSlots)
	}

	rules := r.Group("/availability-rules")
	{
		rules.GET("/:id", h.GetAvailabilityRule)
		rules.PUT("/:id", h.UpdateAvailabilityRule)
		rules.DELETE("/:id", h.DeleteAvailabilityRule)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	doctor, err := h.directory.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor ID")
		return
	}

	doctor, err := h.directory.GetDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor ID")
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	doctor, err := h.directory.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) UpdateDoctorStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor ID")
		return
	}

	var req model.UpdateDoctorStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	doctor, err := h.directory.UpdateDoctorStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor ID")
		return
	}

	if err := h.directory.DeleteDoctor(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	filters := &model.DoctorFilters{
		Specialty: c.Query("specialty"),
		Name:      c.Query("name"),
		Status:    model.DoctorStatus(c.Query("status")),
	}
	if v := c.Query("hospital_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithBadRequest(c, "invalid hospital_id")
			return
		}
		filters.HospitalID = id
	}
	if v := c.Query("department_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithBadRequest(c, "invalid department_id")
			return
		}
		filters.DepartmentID = id
	}

	doctors, err := h.directory.ListDoctors(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

// ListSlots expands the doctor's weekly rules over [from, to] and
// returns up to `limit` concrete slots after skipping `offset`.
func (h *Handler) ListSlots(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor ID")
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid from timestamp, want RFC3339")
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid to timestamp, want RFC3339")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	it, err := h.availability.SlotsBetween(c.Request.Context(), id, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	for i := 0; i < offset; i++ {
		if _, ok := it.Next(); !ok {
			break
		}
	}
	slots := it.Collect(limit)
	if slots == nil {
		slots = []model.TimeSlot{}
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) CreateAvailabilityRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor ID")
		return
	}

	var req model.CreateAvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	rule, err := h.availability.CreateRule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, rule)
}

func (h *Handler) ListAvailabilityRules(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid doctor ID")
		return
	}

	rules, err := h.availability.ListRules(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rules)
}

func (h *Handler) GetAvailabilityRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid rule ID")
		return
	}

	rule, err := h.availability.GetRule(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rule)
}

func (h *Handler) UpdateAvailabilityRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid rule ID")
		return
	}

	var req model.UpdateAvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	rule, err := h.availability.UpdateRule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rule)
}

func (h *Handler) DeleteAvailabilityRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithBadRequest(c, "invalid rule ID")
		return
	}

	if err := h.availability.DeleteRule(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}
