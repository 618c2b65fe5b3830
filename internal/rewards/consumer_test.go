package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/enums"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/eventing"
	"github.com/iump/fruittree-backend/pkg/eventing/idempotency"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	keys map[string]struct{}
	err  error
}

func (m *memoryStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

func (m *memoryStore) EventKey(consumer, eventID string) string {
	return "ft:event:" + consumer + ":" + eventID
}

type stubRewards struct {
	inputs []IssueInput
	err    error
}

func (s *stubRewards) IssueReward(_ context.Context, in IssueInput) (IssueResult, error) {
	s.inputs = append(s.inputs, in)
	if s.err != nil {
		return IssueResult{}, s.err
	}
	return IssueResult{Issued: true}, nil
}

func (s *stubRewards) History(context.Context, uuid.UUID, string, int) (HistoryPage, error) {
	return HistoryPage{}, nil
}

type stubAccounts struct {
	ids   []uuid.UUID
	names []string
}

func (s *stubAccounts) Provision(_ context.Context, id uuid.UUID, name string) (users.ProvisionResult, error) {
	s.ids = append(s.ids, id)
	s.names = append(s.names, name)
	return users.ProvisionResult{Created: true}, nil
}

type consumerHarness struct {
	consumer *Consumer
	rewards  *stubRewards
	accounts *stubAccounts
	store    *memoryStore
}

func newConsumerHarness(t *testing.T) consumerHarness {
	t.Helper()
	store := &memoryStore{keys: map[string]struct{}{}}
	manager, err := idempotency.NewManager(store, time.Hour)
	require.NoError(t, err)
	rewards := &stubRewards{}
	accounts := &stubAccounts{}
	c, err := NewConsumer(ConsumerParams{
		Rewards:     rewards,
		Accounts:    accounts,
		Idempotency: manager,
		Metrics:     metrics.NewRewardEventMetrics(prometheus.NewRegistry()),
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return consumerHarness{consumer: c, rewards: rewards, accounts: accounts, store: store}
}

func envelope(t *testing.T, id uuid.UUID, eventType enums.RewardEventType, data any) []byte {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	raw, err := json.Marshal(eventing.Envelope{
		Version:    eventing.CurrentVersion,
		EventID:    id,
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	require.NoError(t, err)
	return raw
}

func TestConsumerProvisionsAccounts(t *testing.T) {
	h := newConsumerHarness(t)
	userID := uuid.New()

	res := h.consumer.process(context.Background(), "m1", envelope(t, uuid.New(), enums.EventAccountCreated,
		eventing.AccountCreatedEvent{UserID: userID, DisplayName: "Ana"}))
	assert.True(t, res.ack)
	require.Equal(t, []uuid.UUID{userID}, h.accounts.ids)
	assert.Equal(t, []string{"Ana"}, h.accounts.names)
}

func TestConsumerMapsRewardEvents(t *testing.T) {
	h := newConsumerHarness(t)
	inviter, student := uuid.New(), uuid.New()
	ctx := context.Background()

	h.consumer.process(ctx, "m1", envelope(t, uuid.New(), enums.EventInvitationAccepted,
		eventing.InvitationAcceptedEvent{InvitationID: "inv-1", InviterID: inviter, InviteeID: uuid.New()}))
	h.consumer.process(ctx, "m2", envelope(t, uuid.New(), enums.EventChallengeApproved,
		eventing.ChallengeApprovedEvent{SubmissionID: "sub-9", UserID: student, Color: enums.FruitColorRed, Title: "Memory verse"}))
	h.consumer.process(ctx, "m3", envelope(t, uuid.New(), enums.EventAttendanceRecorded,
		eventing.AttendanceRecordedEvent{AttendanceID: "att-3", UserID: student}))

	require.Len(t, h.rewards.inputs, 3)

	inv := h.rewards.inputs[0]
	assert.Equal(t, inviter, inv.UserID)
	assert.Equal(t, enums.FruitColorGreen, inv.Color)
	assert.Equal(t, enums.RewardOriginInvitation, inv.Origin)
	assert.Equal(t, "inv-1", *inv.SourceRef)

	ch := h.rewards.inputs[1]
	assert.Equal(t, enums.FruitColorRed, ch.Color)
	assert.Equal(t, "challenge approved: Memory verse", ch.Reason)
	assert.Equal(t, "sub-9", *ch.SourceRef)

	att := h.rewards.inputs[2]
	assert.Equal(t, enums.RewardOriginAttendance, att.Origin)
	assert.Equal(t, enums.FruitColorGreen, att.Color)
}

func TestConsumerSkipsRedeliveredEvents(t *testing.T) {
	h := newConsumerHarness(t)
	raw := envelope(t, uuid.New(), enums.EventAttendanceRecorded,
		eventing.AttendanceRecordedEvent{AttendanceID: "att-1", UserID: uuid.New()})

	assert.True(t, h.consumer.process(context.Background(), "m1", raw).ack)
	assert.True(t, h.consumer.process(context.Background(), "m1", raw).ack)
	assert.Len(t, h.rewards.inputs, 1)
}

func TestConsumerAcksPoisonMessages(t *testing.T) {
	h := newConsumerHarness(t)

	assert.True(t, h.consumer.process(context.Background(), "m1", []byte("{not json")).ack)

	raw, err := json.Marshal(map[string]any{
		"version":   1,
		"eventId":   uuid.New(),
		"eventType": enums.EventChallengeApproved,
		"data":      json.RawMessage(`{"user_id": 12}`),
	})
	require.NoError(t, err)
	assert.True(t, h.consumer.process(context.Background(), "m2", raw).ack)
	assert.Empty(t, h.rewards.inputs)
}

func TestConsumerRetriesTransientFailures(t *testing.T) {
	h := newConsumerHarness(t)
	h.rewards.err = pkgerrors.New(pkgerrors.CodeDependency, "db down")
	eventID := uuid.New()
	raw := envelope(t, eventID, enums.EventChallengeApproved,
		eventing.ChallengeApprovedEvent{SubmissionID: "s", UserID: uuid.New()})

	res := h.consumer.process(context.Background(), "m1", raw)
	assert.True(t, res.nack)
	assert.Empty(t, h.store.keys, "marker must be cleared for redelivery")

	h.rewards.err = nil
	assert.True(t, h.consumer.process(context.Background(), "m1", raw).ack)
	assert.Len(t, h.rewards.inputs, 2)
}

func TestConsumerRetriesUnknownAccountAndDropsInvalid(t *testing.T) {
	h := newConsumerHarness(t)
	ctx := context.Background()

	h.rewards.err = users.ErrAccountNotFound
	res := h.consumer.process(ctx, "m1", envelope(t, uuid.New(), enums.EventChallengeApproved,
		eventing.ChallengeApprovedEvent{SubmissionID: "s", UserID: uuid.New()}))
	assert.True(t, res.nack)

	h.rewards.err = pkgerrors.New(pkgerrors.CodeValidation, "unknown fruit color")
	res = h.consumer.process(ctx, "m2", envelope(t, uuid.New(), enums.EventChallengeApproved,
		eventing.ChallengeApprovedEvent{SubmissionID: "s2", UserID: uuid.New()}))
	assert.True(t, res.ack)
}

func TestConsumerNacksWhenIdempotencyStoreFails(t *testing.T) {
	h := newConsumerHarness(t)
	h.store.err = errors.New("redis down")

	res := h.consumer.process(context.Background(), "m1", envelope(t, uuid.New(), enums.EventAttendanceRecorded,
		eventing.AttendanceRecordedEvent{AttendanceID: "a", UserID: uuid.New()}))
	assert.True(t, res.nack)
	assert.Empty(t, h.rewards.inputs)
}

func TestConsumerCutsLongEventLabels(t *testing.T) {
	h := newConsumerHarness(t)
	ctx := context.Background()

	h.consumer.process(ctx, "m1", envelope(t, uuid.New(), enums.EventChallengeApproved,
		eventing.ChallengeApprovedEvent{SubmissionID: "sub-1", UserID: uuid.New(), Title: strings.Repeat("x", 300)}))
	h.consumer.process(ctx, "m2", envelope(t, uuid.New(), enums.EventAttendanceRecorded,
		eventing.AttendanceRecordedEvent{AttendanceID: "att-1", UserID: uuid.New(), ServiceName: strings.Repeat("ñ", 300)}))

	require.Len(t, h.rewards.inputs, 2)
	for _, in := range h.rewards.inputs {
		assert.Equal(t, maxReasonLength, utf8.RuneCountInString(in.Reason))
		_, err := normalizeIssue(in)
		assert.NoError(t, err)
	}
	assert.True(t, strings.HasPrefix(h.rewards.inputs[0].Reason, "challenge approved: xxx"))
	assert.True(t, strings.HasPrefix(h.rewards.inputs[1].Reason, "attendance recorded: ñññ"))
}

func TestEventReason(t *testing.T) {
	assert.Equal(t, "challenge approved", eventReason("challenge approved", "   "))
	assert.Equal(t, "attendance recorded: Sunday class", eventReason("attendance recorded", " Sunday class "))
}
