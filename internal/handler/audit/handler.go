package audit

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/service/audit"
	"github.com/hospiq/scheduling-api/pkg/httputil"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/audit-events")
	{
		events.GET("", h.ListEvents)
		events.GET("/export", h.ExportEvents)
	}
}

func (h *Handler) ListEvents(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	var pagination model.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	events, total, err := h.service.List(c.Request.Context(), filters, pagination)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}
	httputil.RespondWithPagination(c, events, pagination.Page, pagination.Limit(), total)
}

// ExportEvents streams the filtered trail as CSV. Pagination does not
// apply; the retention window bounds the size.
func (h *Handler) ExportEvents(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		httputil.RespondWithBadRequest(c, err.Error())
		return
	}

	events, _, err := h.service.List(c.Request.Context(), filters, model.Pagination{Page: 1, PageSize: 10000})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("audit_events_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(c.Writer)
	writer.Write([]string{"ID", "Hospital ID", "Actor", "Action", "Entity Type", "Entity ID", "Created At"})
	for _, event := range events {
		writer.Write([]string{
			event.ID.String(),
			event.HospitalID.String(),
			event.Actor,
			event.Action,
			event.EntityType,
			event.EntityID.String(),
			event.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
}

func parseFilters(c *gin.Context) (*model.AuditFilters, error) {
	filters := &model.AuditFilters{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
	}
	if v := c.Query("hospital_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid hospital_id")
		}
		filters.HospitalID = id
	}
	if v := c.Query("entity_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid entity_id")
		}
		filters.EntityID = id
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid from timestamp, want RFC3339")
		}
		filters.From = from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid to timestamp, want RFC3339")
		}
		filters.To = to
	}
	return filters, nil
}
