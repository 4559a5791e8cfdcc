package audit

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hospiq/scheduling-api/internal/model"
	"github.com/hospiq/scheduling-api/internal/repository"
	"github.com/hospiq/scheduling-api/pkg/logger"
)

type auditRepoStub struct {
	repository.AuditRepository
	mu      sync.Mutex
	created []*model.AuditEvent
	err     error
}

func (r *auditRepoStub) Create(_ context.Context, ev *model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, ev)
	return nil
}

func (r *auditRepoStub) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

func (r *auditRepoStub) first() *model.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.created) == 0 {
		return nil
	}
	return r.created[0]
}

func quietLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestLogDefaultsActorToSystem(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewService(repo)
	hospitalID, entityID := uuid.New(), uuid.New()

	err := svc.Log(context.Background(), hospitalID, "appointment.booked", "appointment", entityID, nil)
	require.NoError(t, err)

	ev := repo.first()
	require.NotNil(t, ev)
	require.NotEqual(t, uuid.Nil, ev.ID)
	require.Equal(t, hospitalID, ev.HospitalID)
	require.Equal(t, "system", ev.Actor)
	require.Equal(t, "appointment.booked", ev.Action)
	require.Equal(t, "appointment", ev.EntityType)
	require.Equal(t, entityID, ev.EntityID)
	require.Nil(t, ev.Context)
	require.WithinDuration(t, time.Now(), ev.CreatedAt, 5*time.Second)
}

func TestLogRecordsActorAndContext(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewService(repo)

	err := svc.Log(context.Background(), uuid.New(), "appointment.cancelled", "appointment", uuid.New(), &LogOptions{
		Actor:   "scheduler",
		Context: map[string]string{"reason": "patient request"},
	})
	require.NoError(t, err)

	ev := repo.first()
	require.Equal(t, "scheduler", ev.Actor)
	require.JSONEq(t, `{"reason":"patient request"}`, string(ev.Context))
}

func TestLogRejectsUnmarshalableContext(t *testing.T) {
	repo := &auditRepoStub{}
	svc := NewService(repo)

	err := svc.Log(context.Background(), uuid.New(), "appointment.booked", "appointment", uuid.New(), &LogOptions{
		Context: make(chan int),
	})
	require.Error(t, err)
	require.Zero(t, repo.count())
}

func TestAuditLoggerNilIsSafe(t *testing.T) {
	var l *AuditLogger

	l.Log(context.Background(), uuid.New(), "appointment.booked", "appointment", uuid.New(), nil)
	require.NoError(t, l.LogSync(context.Background(), uuid.New(), "appointment.booked", "appointment", uuid.New(), nil))
}

func TestAuditLoggerWritesInBackground(t *testing.T) {
	repo := &auditRepoStub{}
	l := NewAuditLogger(NewService(repo), quietLogger())

	l.Log(context.Background(), uuid.New(), "draft.confirmed", "draft", uuid.New(), &LogOptions{Actor: "chatbot"})

	require.Eventually(t, func() bool {
		return repo.count() == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, "chatbot", repo.first().Actor)
}

func TestLogSyncPropagatesError(t *testing.T) {
	repo := &auditRepoStub{err: sql.ErrConnDone}
	l := NewAuditLogger(NewService(repo), quietLogger())

	err := l.LogSync(context.Background(), uuid.New(), "appointment.booked", "appointment", uuid.New(), nil)
	require.ErrorIs(t, err, sql.ErrConnDone)
}
