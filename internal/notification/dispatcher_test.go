package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/docushare/share-management-api/internal/config"
	"github.com/docushare/share-management-api/internal/models"
)

type stubOutbox struct {
	pending    []models.NotificationEvent
	dispatched []string
	failed     []string
	failReason string
}

func (s *stubOutbox) FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	return s.pending, nil
}

func (s *stubOutbox) MarkDispatched(ctx context.Context, eventID string, updatedTime int64) error {
	s.dispatched = append(s.dispatched, eventID)
	return nil
}

func (s *stubOutbox) MarkFailed(ctx context.Context, eventID, reason string, maxAttempts int, updatedTime int64) error {
	s.failed = append(s.failed, eventID)
	s.failReason = reason
	return nil
}

type stubUsers struct {
	users map[string]*models.User
}

func (s *stubUsers) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if user, ok := s.users[userID]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

type stubSettings struct {
	emailEnabled bool
}

func (s *stubSettings) GetCurrentSettings(ctx context.Context) (*models.ApprovalSettings, error) {
	return &models.ApprovalSettings{EmailNotifications: s.emailEnabled}, nil
}

type sentRequestEmail struct {
	approverEmail string
	documentName  string
	requesterName string
}

type sentDecisionEmail struct {
	requesterEmail string
	decision       models.DecisionValue
	shareURL       string
}

type stubEmail struct {
	requestEmails  []sentRequestEmail
	decisionEmails []sentDecisionEmail
	err            error
}

func (s *stubEmail) SendApprovalRequestNotification(ctx context.Context, approverEmail, approverName, documentName, requesterName, reason, shareCode string, expiresAt int64, categoryName, formattedFileSize, policyName string) error {
	if s.err != nil {
		return s.err
	}
	s.requestEmails = append(s.requestEmails, sentRequestEmail{approverEmail, documentName, requesterName})
	return nil
}

func (s *stubEmail) SendApprovalDecisionNotification(ctx context.Context, requesterEmail, requesterName, documentName string, decision models.DecisionValue, comment, shareCode, shareURL string) error {
	if s.err != nil {
		return s.err
	}
	s.decisionEmails = append(s.decisionEmails, sentDecisionEmail{requesterEmail, decision, shareURL})
	return nil
}

type stubPublisher struct {
	published []models.EventType
	err       error
}

func (s *stubPublisher) Publish(ctx context.Context, eventType models.EventType, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, eventType)
	return nil
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	outbox     *stubOutbox
	email      *stubEmail
	publisher  *stubPublisher
}

func newDispatcherUnderTest(outbox *stubOutbox, users *stubUsers, emailEnabled bool) *dispatcherFixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	email := &stubEmail{}
	publisher := &stubPublisher{}
	dispatcher := NewDispatcher(outbox, users, &stubSettings{emailEnabled: emailEnabled}, email, publisher, config.NotificationConfig{
		Enabled:      true,
		PollInterval: 5 * time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  3,
		ShareBaseURL: "https://docs.example.com/s",
	}, logger)
	return &dispatcherFixture{dispatcher: dispatcher, outbox: outbox, email: email, publisher: publisher}
}

func shareCreatedEvent(t *testing.T) models.NotificationEvent {
	t.Helper()
	raw, err := json.Marshal(models.DocumentShareCreatedEvent{
		ShareID:    "SHARE-1",
		ShareCode:  "abc123",
		Recipients: []string{"alice@example.com"},
	})
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return models.NotificationEvent{
		EventID:   "EVENT-1",
		EventType: models.EventDocumentShareCreated,
		Payload:   models.JSON(raw),
		Status:    models.EventStatusPending,
	}
}

func TestDrainOnce_PublishesAndMarksDispatched(t *testing.T) {
	outbox := &stubOutbox{pending: []models.NotificationEvent{shareCreatedEvent(t)}}
	f := newDispatcherUnderTest(outbox, &stubUsers{}, true)

	f.dispatcher.drainOnce(context.Background())

	assert.Equal(t, []models.EventType{models.EventDocumentShareCreated}, f.publisher.published)
	assert.Equal(t, []string{"EVENT-1"}, outbox.dispatched)
	assert.Empty(t, outbox.failed)
	// Share links go out through the event bus only
	assert.Empty(t, f.email.requestEmails)
	assert.Empty(t, f.email.decisionEmails)
}

func TestDrainOnce_PublishFailureMarksFailed(t *testing.T) {
	outbox := &stubOutbox{pending: []models.NotificationEvent{shareCreatedEvent(t)}}
	f := newDispatcherUnderTest(outbox, &stubUsers{}, true)
	f.publisher.err = errors.New("broker unavailable")

	f.dispatcher.drainOnce(context.Background())

	assert.Empty(t, outbox.dispatched)
	assert.Equal(t, []string{"EVENT-1"}, outbox.failed)
	assert.Contains(t, outbox.failReason, "broker unavailable")
}

func TestDrainOnce_RequestCreatedEmailsEveryApprover(t *testing.T) {
	displayName := "Alice Admin"
	users := &stubUsers{users: map[string]*models.User{
		"USER-1":       {UserID: "USER-1", Username: "bob", Email: "bob@example.com"},
		"USER-ADMIN-1": {UserID: "USER-ADMIN-1", Username: "alice", Email: "alice@example.com", DisplayName: &displayName},
		"USER-ADMIN-2": {UserID: "USER-ADMIN-2", Username: "carol", Email: "carol@example.com"},
	}}
	raw, err := json.Marshal(models.ApprovalRequestCreatedEvent{
		RequestID:         "APPREQ-1",
		DocumentName:      "quarterly-report.pdf",
		RequesterUserID:   "USER-1",
		AssignedApprovers: []string{"USER-ADMIN-1", "USER-ADMIN-2"},
		FileSizeBytes:     2 * 1024 * 1024,
	})
	assert.NoError(t, err)
	outbox := &stubOutbox{pending: []models.NotificationEvent{{
		EventID:   "EVENT-2",
		EventType: models.EventApprovalRequestCreated,
		Payload:   models.JSON(raw),
	}}}
	f := newDispatcherUnderTest(outbox, users, true)

	f.dispatcher.drainOnce(context.Background())

	assert.Len(t, f.email.requestEmails, 2)
	assert.Equal(t, "alice@example.com", f.email.requestEmails[0].approverEmail)
	assert.Equal(t, "carol@example.com", f.email.requestEmails[1].approverEmail)
	assert.Equal(t, "bob", f.email.requestEmails[0].requesterName)
	assert.Equal(t, []string{"EVENT-2"}, outbox.dispatched)
}

func TestDrainOnce_DecisionEmailCarriesShareURL(t *testing.T) {
	users := &stubUsers{users: map[string]*models.User{
		"USER-1": {UserID: "USER-1", Username: "bob", Email: "bob@example.com"},
	}}
	raw, err := json.Marshal(models.ApprovalDecisionMadeEvent{
		RequestID:       "APPREQ-1",
		ShareCode:       "abc123",
		Decision:        models.DecisionApproved,
		RequesterUserID: "USER-1",
	})
	assert.NoError(t, err)
	outbox := &stubOutbox{pending: []models.NotificationEvent{{
		EventID:   "EVENT-3",
		EventType: models.EventApprovalDecisionMade,
		Payload:   models.JSON(raw),
	}}}
	f := newDispatcherUnderTest(outbox, users, true)

	f.dispatcher.drainOnce(context.Background())

	assert.Len(t, f.email.decisionEmails, 1)
	assert.Equal(t, "bob@example.com", f.email.decisionEmails[0].requesterEmail)
	assert.Equal(t, models.DecisionApproved, f.email.decisionEmails[0].decision)
	assert.Equal(t, "https://docs.example.com/s/abc123", f.email.decisionEmails[0].shareURL)
}

func TestDrainOnce_EmailDisabledStillPublishes(t *testing.T) {
	raw, err := json.Marshal(models.ApprovalDecisionMadeEvent{
		RequesterUserID: "USER-1",
	})
	assert.NoError(t, err)
	outbox := &stubOutbox{pending: []models.NotificationEvent{{
		EventID:   "EVENT-4",
		EventType: models.EventApprovalDecisionMade,
		Payload:   models.JSON(raw),
	}}}
	f := newDispatcherUnderTest(outbox, &stubUsers{}, false)

	f.dispatcher.drainOnce(context.Background())

	assert.Equal(t, []models.EventType{models.EventApprovalDecisionMade}, f.publisher.published)
	assert.Equal(t, []string{"EVENT-4"}, outbox.dispatched)
	assert.Empty(t, f.email.decisionEmails)
}

func TestDispatcher_StartStop(t *testing.T) {
	outbox := &stubOutbox{}
	f := newDispatcherUnderTest(outbox, &stubUsers{}, true)

	f.dispatcher.Start(context.Background())
	f.dispatcher.Start(context.Background())
	f.dispatcher.Stop()
	f.dispatcher.Stop()
}
