package remote

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy shapes the exponential backoff between attempts. Attempts are
// unbounded; only the context ends them.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
	}
}

// Retrying wraps a Gateway and retries every call whose error is classified
// as transient, forever, until it succeeds, fails permanently, or ctx ends.
type Retrying struct {
	next      Gateway
	transient func(error) bool
	policy    RetryPolicy
	logger    *zap.Logger
}

func NewRetrying(next Gateway, transient func(error) bool, policy RetryPolicy, logger *zap.Logger) *Retrying {
	return &Retrying{
		next:      next,
		transient: transient,
		policy:    policy,
		logger:    logger,
	}
}

func (r *Retrying) GetPeerSettings(ctx context.Context, peer InputPeer) (PeerSettings, error) {
	var out PeerSettings
	err := r.do(ctx, "messages.getPeerSettings", func(ctx context.Context) (err error) {
		out, err = r.next.GetPeerSettings(ctx, peer)
		return err
	})
	return out, err
}

func (r *Retrying) GetFullUser(ctx context.Context, user InputUser) (UserFull, error) {
	var out UserFull
	err := r.do(ctx, "users.getFullUser", func(ctx context.Context) (err error) {
		out, err = r.next.GetFullUser(ctx, user)
		return err
	})
	return out, err
}

func (r *Retrying) GetFullChat(ctx context.Context, chatID int64) (ChatFull, error) {
	var out ChatFull
	err := r.do(ctx, "messages.getFullChat", func(ctx context.Context) (err error) {
		out, err = r.next.GetFullChat(ctx, chatID)
		return err
	})
	return out, err
}

func (r *Retrying) GetFullChannel(ctx context.Context, channel InputChannel) (ChatFull, error) {
	var out ChatFull
	err := r.do(ctx, "channels.getFullChannel", func(ctx context.Context) (err error) {
		out, err = r.next.GetFullChannel(ctx, channel)
		return err
	})
	return out, err
}

func (r *Retrying) GetParticipantSelf(ctx context.Context, channel InputChannel) (ChannelParticipant, error) {
	var out ChannelParticipant
	err := r.do(ctx, "channels.getParticipant", func(ctx context.Context) (err error) {
		out, err = r.next.GetParticipantSelf(ctx, channel)
		return err
	})
	return out, err
}

func (r *Retrying) do(ctx context.Context, method string, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = 0

	attempt := func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if r.transient == nil || !r.transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Remote call failed, retrying",
			zap.String("method", method),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return backoff.RetryNotify(attempt, backoff.WithContext(b, ctx), notify)
}
