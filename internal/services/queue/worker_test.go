package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/batch"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeConverter struct {
	result *models.ConversionResult
	err    error
	inputs []models.InputImage
}

func (c *fakeConverter) Convert(ctx context.Context, inputs []models.InputImage, cfg models.ConversionConfig, observers ...batch.ProgressFunc) (*models.ConversionResult, error) {
	c.inputs = inputs
	if c.err != nil {
		return nil, c.err
	}
	for _, observe := range observers {
		observe(models.Progress{Done: len(inputs), Total: len(inputs)})
	}
	return c.result, nil
}

type fakeStore struct {
	statuses   []string
	lastJob    models.ConversionJob
	sessions   []string
	sessionErr error
}

func (s *fakeStore) SaveJob(ctx context.Context, job *models.ConversionJob) error {
	s.statuses = append(s.statuses, job.Status)
	s.lastJob = *job
	return nil
}

func (s *fakeStore) SaveSession(ctx context.Context, sessionID string, result *models.ConversionResult, format models.Format) error {
	s.sessions = append(s.sessions, sessionID)
	return s.sessionErr
}

func newTestQueue(t *testing.T, conv Converter, store JobStore) *QueueService {
	return &QueueService{
		logger:    zaptest.NewLogger(t),
		queueName: DefaultQueueName,
		converter: conv,
		store:     store,
	}
}

func delivery(t *testing.T, ack amqp.Acknowledger, job *models.ConversionJob) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, DeliveryTag: 1}
}

func twoFileResult() *models.ConversionResult {
	return &models.ConversionResult{
		Summary: &models.BatchSummary{
			Successes: []models.Success{
				{SourceName: "a.jpg", OutputName: "a.png", OutputBytes: []byte("a"), OutputByteSize: 1, OriginalByteSize: 3},
				{SourceName: "b.jpg", OutputName: "b.png", OutputBytes: []byte("b"), OutputByteSize: 1, OriginalByteSize: 3},
			},
			Failures:            []models.Failure{},
			TotalOriginalBytes:  6,
			TotalConvertedBytes: 2,
		},
		Archive: &models.Archive{Name: "converted_images.zip", Bytes: []byte("zip"), EntryCount: 2},
	}
}

func TestProcessMessageCompletesJob(t *testing.T) {
	conv := &fakeConverter{result: twoFileResult()}
	store := &fakeStore{}
	q := newTestQueue(t, conv, store)
	ack := &fakeAcknowledger{}

	job := &models.ConversionJob{
		ID:        "job-1",
		Images:    []models.InputImage{models.NewInputImage("a.jpg", []byte("abc")), models.NewInputImage("b.jpg", []byte("def"))},
		Config:    models.ConversionConfig{TargetFormat: models.FormatPNG},
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	q.processMessage(context.Background(), delivery(t, ack, job), 1)

	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
	assert.Len(t, conv.inputs, 2)
	assert.Equal(t, []byte("abc"), conv.inputs[0].Content)

	assert.Equal(t, []string{models.StatusProcessing, models.StatusCompleted}, store.statuses)
	assert.Equal(t, []string{"job-1"}, store.sessions)
	require.NotNil(t, store.lastJob.Result)
	assert.Equal(t, "/api/v1/sessions/job-1/archive", store.lastJob.Result.Archive.DownloadURL)
	assert.Len(t, store.lastJob.Result.Files, 2)
}

func TestProcessMessageMalformed(t *testing.T) {
	store := &fakeStore{}
	q := newTestQueue(t, &fakeConverter{}, store)
	ack := &fakeAcknowledger{}

	q.processMessage(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")}, 1)

	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Zero(t, ack.acked)
	assert.Empty(t, store.statuses)
}

func TestProcessMessageValidationFailure(t *testing.T) {
	conv := &fakeConverter{err: &models.ValidationError{Field: "images", Message: "at least one image is required"}}
	store := &fakeStore{}
	q := newTestQueue(t, conv, store)
	ack := &fakeAcknowledger{}

	q.processMessage(context.Background(), delivery(t, ack, &models.ConversionJob{ID: "job-2"}), 1)

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, []string{models.StatusProcessing, models.StatusFailed}, store.statuses)
	assert.Contains(t, store.lastJob.Error, "at least one image is required")
	assert.Empty(t, store.sessions)
}

func TestProcessMessageSessionStoreFailure(t *testing.T) {
	conv := &fakeConverter{result: twoFileResult()}
	store := &fakeStore{sessionErr: errors.New("redis down")}
	q := newTestQueue(t, conv, store)
	ack := &fakeAcknowledger{}

	job := &models.ConversionJob{ID: "job-3", SessionID: "sess-3", Config: models.ConversionConfig{TargetFormat: models.FormatPNG}}
	q.processMessage(context.Background(), delivery(t, ack, job), 1)

	assert.Equal(t, []string{"sess-3"}, store.sessions)
	assert.Equal(t, models.StatusCompleted, store.lastJob.Status)
	require.NotNil(t, store.lastJob.Result)
	assert.Empty(t, store.lastJob.Result.Files[0].DownloadURL)
}

func TestProcessMessageAllFailedSkipsSession(t *testing.T) {
	conv := &fakeConverter{result: &models.ConversionResult{
		Summary: &models.BatchSummary{
			Successes: []models.Success{},
			Failures:  []models.Failure{{SourceName: "a.jpg", Reason: models.ReasonDecodeError, Message: "bad data"}},
		},
	}}
	store := &fakeStore{}
	q := newTestQueue(t, conv, store)
	ack := &fakeAcknowledger{}

	job := &models.ConversionJob{ID: "job-4", Config: models.ConversionConfig{TargetFormat: models.FormatWebP}}
	q.processMessage(context.Background(), delivery(t, ack, job), 1)

	assert.Empty(t, store.sessions)
	assert.Equal(t, models.StatusCompleted, store.lastJob.Status)
	require.NotNil(t, store.lastJob.Result)
	assert.Len(t, store.lastJob.Result.Failures, 1)
	assert.Nil(t, store.lastJob.Result.Archive)
}

func TestHealthCheckWithoutConnection(t *testing.T) {
	q := newTestQueue(t, &fakeConverter{}, &fakeStore{})
	assert.Equal(t, "unhealthy: rabbitmq connection closed", q.HealthCheck())

	_, err := q.GetQueueStats()
	assert.ErrorContains(t, err, "channel not available")
}
