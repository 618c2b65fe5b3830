package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/iump/fruittree-backend/internal/users"
	"github.com/iump/fruittree-backend/pkg/enums"
	pkgerrors "github.com/iump/fruittree-backend/pkg/errors"
	"github.com/iump/fruittree-backend/pkg/eventing"
	"github.com/iump/fruittree-backend/pkg/eventing/idempotency"
	"github.com/iump/fruittree-backend/pkg/eventing/registry"
	"github.com/iump/fruittree-backend/pkg/logger"
	"github.com/iump/fruittree-backend/pkg/metrics"
)

const rewardEventsConsumer = "reward-events"

// Colors credited when an event does not name one.
var defaultEventColor = map[enums.RewardEventType]enums.FruitColor{
	enums.EventInvitationAccepted: enums.FruitColorGreen,
	enums.EventChallengeApproved:  enums.FruitColorGold,
	enums.EventAttendanceRecorded: enums.FruitColorGreen,
}

type accountProvisioner interface {
	Provision(ctx context.Context, id uuid.UUID, displayName string) (users.ProvisionResult, error)
}

// ConsumerParams groups dependencies for the reward event consumer.
type ConsumerParams struct {
	Rewards      Service
	Accounts     accountProvisioner
	Subscription *pubsub.Subscriber
	Decoders     *registry.DecoderRegistry
	Idempotency  *idempotency.Manager
	Metrics      *metrics.RewardEventMetrics
	Logger       *logger.Logger
}

// Consumer turns external domain events into provisioned accounts and
// issued fruit.
type Consumer struct {
	rewards      Service
	accounts     accountProvisioner
	subscription *pubsub.Subscriber
	decoders     *registry.DecoderRegistry
	idempotency  *idempotency.Manager
	metrics      *metrics.RewardEventMetrics
	logg         *logger.Logger
}

// NewConsumer builds a reward event consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Rewards == nil {
		return nil, fmt.Errorf("rewards service required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts service required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	decoders := params.Decoders
	if decoders == nil {
		decoders = registry.Default()
	}
	return &Consumer{
		rewards:      params.Rewards,
		accounts:     params.Accounts,
		subscription: params.Subscription,
		decoders:     decoders,
		idempotency:  params.Idempotency,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("rewards subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.ID, msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, messageID string, data []byte) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", messageID)

	env, err := eventing.ParseEnvelope(data)
	if err != nil {
		c.logg.Error(logCtx, "dropping malformed reward event", err)
		c.metrics.Inc("unknown", "malformed")
		return processResult{ack: true}
	}
	eventType := string(env.EventType)
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id":   env.EventID.String(),
		"event_type": eventType,
	})

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, rewardEventsConsumer, env.EventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		c.metrics.Inc(eventType, "retry")
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		c.metrics.Inc(eventType, "duplicate")
		return processResult{ack: true}
	}

	payload, err := c.decoders.Decode(env.EventType, env.Version, env.Data)
	if err != nil {
		c.logg.Error(logCtx, "dropping undecodable reward event", err)
		c.metrics.Inc(eventType, "malformed")
		return processResult{ack: true}
	}

	if err := c.handle(logCtx, env, payload); err != nil {
		// the account.created event may still be in flight
		if errors.Is(err, users.ErrAccountNotFound) {
			c.logg.Warn(logCtx, "reward for unknown account, will retry")
			_ = c.idempotency.Delete(ctx, rewardEventsConsumer, env.EventID)
			c.metrics.Inc(eventType, "retry")
			return processResult{nack: true}
		}
		if typed := pkgerrors.As(err); typed != nil && !pkgerrors.MetadataFor(typed.Code()).Retryable {
			c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "reward event rejected")
			c.metrics.Inc(eventType, "rejected")
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "reward event handling failed", err)
		_ = c.idempotency.Delete(ctx, rewardEventsConsumer, env.EventID)
		c.metrics.Inc(eventType, "retry")
		return processResult{nack: true}
	}
	c.metrics.Inc(eventType, "ok")
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, env eventing.Envelope, payload any) error {
	switch p := payload.(type) {
	case eventing.AccountCreatedEvent:
		res, err := c.accounts.Provision(ctx, p.UserID, p.DisplayName)
		if err != nil {
			return err
		}
		c.logg.Info(c.logg.WithField(ctx, "created", res.Created), "account provisioned")
		return nil
	case eventing.InvitationAcceptedEvent:
		return c.issue(ctx, env.EventType, IssueInput{
			UserID:    p.InviterID,
			Color:     p.Color,
			Reason:    "invitation accepted",
			Origin:    enums.RewardOriginInvitation,
			SourceRef: sourceRef(p.InvitationID, p.InviteeID.String()),
		})
	case eventing.ChallengeApprovedEvent:
		return c.issue(ctx, env.EventType, IssueInput{
			UserID:    p.UserID,
			Color:     p.Color,
			Reason:    eventReason("challenge approved", p.Title),
			Origin:    enums.RewardOriginChallenge,
			SourceRef: sourceRef(p.SubmissionID, env.EventID.String()),
		})
	case eventing.AttendanceRecordedEvent:
		return c.issue(ctx, env.EventType, IssueInput{
			UserID:    p.UserID,
			Color:     p.Color,
			Reason:    eventReason("attendance recorded", p.ServiceName),
			Origin:    enums.RewardOriginAttendance,
			SourceRef: sourceRef(p.AttendanceID, env.EventID.String()),
		})
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unhandled payload %T", payload))
	}
}

func (c *Consumer) issue(ctx context.Context, eventType enums.RewardEventType, in IssueInput) error {
	if in.Color == "" {
		in.Color = defaultEventColor[eventType]
	}
	res, err := c.rewards.IssueReward(ctx, in)
	if err != nil {
		return err
	}
	c.logg.Info(c.logg.WithField(ctx, "issued", res.Issued), "reward event applied")
	return nil
}

// eventReason joins label with the upstream detail, cutting the detail by
// runes so the reason stays within maxReasonLength.
func eventReason(label, detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return label
	}
	prefix := label + ": "
	budget := maxReasonLength - utf8.RuneCountInString(prefix)
	if runes := []rune(detail); len(runes) > budget {
		detail = strings.TrimSpace(string(runes[:budget]))
	}
	return prefix + detail
}

// sourceRef prefers the upstream business id and falls back to fallback.
func sourceRef(id, fallback string) *string {
	ref := strings.TrimSpace(id)
	if ref == "" {
		ref = fallback
	}
	return &ref
}
