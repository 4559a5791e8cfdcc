package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	draftsvc "github.com/hospiq/scheduling-api/internal/service/draft"
	apperrors "github.com/hospiq/scheduling-api/pkg/errors"
	"github.com/hospiq/scheduling-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type bookerStub struct {
	appt *model.Appointment
	err  error
}

func (b *bookerStub) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.appt, nil
}

type proberStub struct{ seats int }

func (p *proberStub) HasSlot(ctx context.Context, doctorID uuid.UUID, startAt, endAt time.Time) (int, error) {
	return p.seats, nil
}

type archiveStub struct {
	repository.DraftRepository
	archived []*model.Draft
}

func (a *archiveStub) Archive(ctx context.Context, draft *model.Draft) error {
	a.archived = append(a.archived, draft)
	return nil
}

func (a *archiveStub) ListArchived(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*model.Draft, error) {
	return a.archived, nil
}

type handlerFixture struct {
	hospitalID uuid.UUID
	booker     *bookerStub
	prober     *proberStub
	router     *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		hospitalID: uuid.New(),
		booker:     &bookerStub{appt: &model.Appointment{Base: model.Base{ID: uuid.New()}}},
		prober:     &proberStub{seats: 1},
	}

	quiet := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := draftsvc.NewService(draftsvc.NewStore(0), f.booker, f.prober, &archiveStub{}, quiet, nil)

	f.router = gin.New()
	NewHandler(svc).RegisterRoutes(f.router.Group("/api/v1"))
	return f
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func (f *handlerFixture) openDraft(t *testing.T, sessionKey string) {
	t.Helper()
	w, _ := f.do(t, http.MethodPost, "/api/v1/drafts", gin.H{
		"session_key": sessionKey,
		"hospital_id": f.hospitalID.String(),
		"channel":     "whatsapp",
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestOpenDraftEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/drafts", gin.H{
		"session_key": "sess-1",
		"hospital_id": f.hospitalID.String(),
		"channel":     "whatsapp",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", env.Status)

	var d model.Draft
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, model.DraftStateCollecting, d.State)
	assert.Equal(t, model.DraftChannelWhatsApp, d.Channel)
}

func TestOpenDraftRejectsBadChannel(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/drafts", gin.H{
		"session_key": "sess-1",
		"hospital_id": f.hospitalID.String(),
		"channel":     "carrier-pigeon",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", env.Status)
}

func TestGetDraftEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.openDraft(t, "sess-1")

	w, env := f.do(t, http.MethodGet, "/api/v1/drafts/sess-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)

	w, _ = f.do(t, http.MethodGet, "/api/v1/drafts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftLifecycleEndpoints(t *testing.T) {
	f := newHandlerFixture(t)
	f.openDraft(t, "sess-1")

	w, _ := f.do(t, http.MethodPut, "/api/v1/drafts/sess-1/patient", gin.H{
		"patient_id": uuid.NewString(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := f.do(t, http.MethodPut, "/api/v1/drafts/sess-1/slot", gin.H{
		"start_at":  "2026-01-06T09:00:00Z",
		"end_at":    "2026-01-06T09:30:00Z",
		"doctor_id": uuid.NewString(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var d model.Draft
	require.NoError(t, json.Unmarshal(env.Data, &d))
	require.Equal(t, model.DraftStateReady, d.State)

	w, env = f.do(t, http.MethodPost, "/api/v1/drafts/sess-1/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, model.DraftStateConfirmed, d.State)
	require.NotNil(t, d.AppointmentID)
	assert.Equal(t, f.booker.appt.ID, *d.AppointmentID)

	// Retired drafts disappear from the live API.
	w, _ = f.do(t, http.MethodGet, "/api/v1/drafts/sess-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmDraftNotReady(t *testing.T) {
	f := newHandlerFixture(t)
	f.openDraft(t, "sess-1")

	w, env := f.do(t, http.MethodPost, "/api/v1/drafts/sess-1/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, env.Message, "not ready")
}

func TestConfirmDraftSlotFull(t *testing.T) {
	f := newHandlerFixture(t)
	f.openDraft(t, "sess-1")
	f.booker.err = apperrors.NewSlotFull("slot is fully booked")

	w, _ := f.do(t, http.MethodPut, "/api/v1/drafts/sess-1/patient", gin.H{"patient_id": uuid.NewString()})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPut, "/api/v1/drafts/sess-1/slot", gin.H{
		"start_at":  "2026-01-06T09:00:00Z",
		"end_at":    "2026-01-06T09:30:00Z",
		"doctor_id": uuid.NewString(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := f.do(t, http.MethodPost, "/api/v1/drafts/sess-1/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, env.Message, "fully booked")

	// The draft fell back to collecting with the slot cleared.
	w, env = f.do(t, http.MethodGet, "/api/v1/drafts/sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d model.Draft
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, model.DraftStateCollecting, d.State)
	assert.Nil(t, d.Slot)
}

func TestAbandonDraftEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.openDraft(t, "sess-1")

	w, env := f.do(t, http.MethodPost, "/api/v1/drafts/sess-1/abandon", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var d model.Draft
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, model.DraftStateAbandoned, d.State)

	// Abandoning an unknown session still succeeds with empty data.
	w, env = f.do(t, http.MethodPost, "/api/v1/drafts/sess-1/abandon", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "null", string(env.Data))
}

func TestListArchivedDraftsRequiresHospital(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/drafts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "hospital_id")

	w, _ = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/drafts?hospital_id=%s", f.hospitalID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
