package resource

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/lexfrei/go-homectl/internal/retry"
	"github.com/lexfrei/go-homectl/observability"
)

const (
	// DefaultPollTimeout is how long each long-poll waits for changes.
	DefaultPollTimeout = 15 * time.Second
	// MinPollTimeout is the shortest poll timeout the controller accepts.
	MinPollTimeout = 1 * time.Second
	// MaxPollTimeout is the controller's own connection timeout; poll timeouts must stay below it.
	MaxPollTimeout = 20 * time.Second

	// DefaultPollDelay is the pause before every poll.
	DefaultPollDelay = 25 * time.Millisecond
	// DefaultDisableDelay is the pause between the last poll and disabling notifications.
	DefaultDisableDelay = 25 * time.Millisecond
	// DefaultDisableTimeout bounds the final disable call.
	DefaultDisableTimeout = 10 * time.Second
	// DefaultBackoffUnit is scaled by the square of the consecutive failure count.
	DefaultBackoffUnit = 100 * time.Millisecond
	// DefaultMaxConsecutiveFailures is how many failed polls in a row are absorbed.
	DefaultMaxConsecutiveFailures = 10
)

// ErrTooManyPollFailures ends a stream whose polls failed more than
// MaxConsecutiveFailures times in a row. The last poll error is wrapped.
var ErrTooManyPollFailures = errors.New("too many consecutive poll failures")

// StreamOptions tunes a change stream. Zero fields select the defaults.
type StreamOptions struct {
	// PollTimeout is sent with every poll; must lie in [MinPollTimeout, MaxPollTimeout)
	PollTimeout time.Duration

	// PollDelay is waited before every poll
	PollDelay time.Duration

	// DisableDelay is waited before notifications are disabled
	DisableDelay time.Duration

	// DisableTimeout bounds the disable call, which runs even after cancellation
	DisableTimeout time.Duration

	// BackoffUnit is the backoff after the first failure; the n-th uses n*n units
	BackoffUnit time.Duration

	// MaxConsecutiveFailures is how many failed polls in a row are tolerated
	MaxConsecutiveFailures int

	// Logger for observability (optional, uses noop logger if nil)
	Logger observability.Logger

	// Metrics recorder for observability (optional, uses noop recorder if nil)
	Metrics observability.MetricsRecorder
}

func (o *StreamOptions) withDefaults() (StreamOptions, error) {
	var out StreamOptions
	if o != nil {
		out = *o
	}

	if out.PollTimeout == 0 {
		out.PollTimeout = DefaultPollTimeout
	}
	if err := validatePollTimeout(out.PollTimeout); err != nil {
		return StreamOptions{}, err
	}
	if out.PollDelay == 0 {
		out.PollDelay = DefaultPollDelay
	}
	if out.DisableDelay == 0 {
		out.DisableDelay = DefaultDisableDelay
	}
	if out.DisableTimeout == 0 {
		out.DisableTimeout = DefaultDisableTimeout
	}
	if out.BackoffUnit == 0 {
		out.BackoffUnit = DefaultBackoffUnit
	}
	if out.MaxConsecutiveFailures == 0 {
		out.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if out.PollDelay < 0 || out.DisableDelay < 0 || out.DisableTimeout < 0 ||
		out.BackoffUnit < 0 || out.MaxConsecutiveFailures < 0 {
		return StreamOptions{}, errors.New("stream options must not be negative")
	}
	if out.Logger == nil {
		out.Logger = observability.NoopLogger()
	}
	if out.Metrics == nil {
		out.Metrics = observability.NoopMetricsRecorder()
	}

	return out, nil
}

func validatePollTimeout(timeout time.Duration) error {
	if timeout < MinPollTimeout || timeout >= MaxPollTimeout {
		return errors.Newf("poll timeout %s out of range [%s, %s)", timeout, MinPollTimeout, MaxPollTimeout)
	}
	return nil
}

// ChangeStream delivers value changes of a fixed set of resources.
//
// Changes are received from Changes until the channel is closed, which
// happens after notifications were disabled. Err then reports why the stream
// ended. A stream is not restartable.
//
// Cancellation does not wait for a long-poll to finish: the poll in flight is
// aborted, and values from a poll that returns after cancellation are
// dropped rather than delivered.
type ChangeStream struct {
	id      string
	ids     IDSet
	initial []Value
	changes chan Value
	done    chan struct{}
	cancel  context.CancelFunc

	client NotificationClient
	opts   StreamOptions
	logger observability.Logger

	mu  sync.Mutex
	err error
}

// StreamChanges subscribes to ids and returns a stream of their value changes.
//
// Notifications are enabled before StreamChanges returns; if that fails the
// error is returned and nothing else happens. The values returned by the
// subscription are available from Initial and are not sent on Changes.
//
// The stream then long-polls until ctx is canceled, Close is called, or more
// than MaxConsecutiveFailures polls in a row fail. Whatever ends it,
// notifications for the same ids are disabled exactly once, even if ctx is
// already canceled.
func StreamChanges(ctx context.Context, client NotificationClient, ids []ID, opts *StreamOptions) (*ChangeStream, error) {
	if client == nil {
		return nil, errors.New("notification client is required")
	}

	set, err := NewIDSet(ids...)
	if err != nil {
		return nil, err
	}

	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	streamID := uuid.NewString()
	logger := o.Logger.With(
		observability.Field{Key: "stream_id", Value: streamID},
		observability.Field{Key: "resource_ids", Value: []ID(set)},
	)

	initial, err := client.EnableNotifications(ctx, set)
	if err != nil {
		logger.Error("failed to enable notifications",
			observability.Field{Key: "error", Value: err.Error()},
		)
		o.Metrics.RecordError(ServiceName+"."+opEnableNotification, "StreamSetup")
		return nil, errors.Wrap(err, "failed to enable notifications")
	}

	logger.Info("change stream started",
		observability.Field{Key: "initial_values", Value: len(initial)},
		observability.Field{Key: "poll_timeout", Value: o.PollTimeout},
	)

	ctx, cancel := context.WithCancel(ctx)

	s := &ChangeStream{
		id:      streamID,
		ids:     set,
		initial: initial,
		changes: make(chan Value),
		done:    make(chan struct{}),
		cancel:  cancel,
		client:  client,
		opts:    o,
		logger:  logger,
	}

	go s.run(ctx)

	return s, nil
}

// ID returns the stream's correlation ID, also logged as stream_id.
func (s *ChangeStream) ID() string {
	return s.id
}

// ResourceIDs returns the subscribed IDs.
func (s *ChangeStream) ResourceIDs() IDSet {
	return append(IDSet(nil), s.ids...)
}

// Initial returns the values reported when notifications were enabled.
func (s *ChangeStream) Initial() []Value {
	return append([]Value(nil), s.initial...)
}

// Changes returns the channel changes are delivered on, in the order the
// controller reported them. It is closed when the stream has stopped.
func (s *ChangeStream) Changes() <-chan Value {
	return s.changes
}

// Done is closed once the stream has stopped and notifications were disabled.
func (s *ChangeStream) Done() <-chan struct{} {
	return s.done
}

// Err returns why the stream stopped. It is nil while the stream runs and
// after a plain cancellation. Otherwise it wraps ErrTooManyPollFailures, the
// disable failure, or both.
func (s *ChangeStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the stream, waits for notifications to be disabled and returns Err.
func (s *ChangeStream) Close() error {
	s.cancel()
	<-s.done
	return s.Err()
}

func (s *ChangeStream) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.changes)
	defer s.cancel()

	pollErr := s.poll(ctx)
	disableErr := s.disable(ctx)

	err := errors.Join(pollErr, disableErr)

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Info("change stream stopped", observability.Field{Key: "error", Value: err.Error()})
		return
	}
	s.logger.Info("change stream stopped")
}

// poll runs the polling loop. It returns nil on cancellation and the fatal
// error once too many polls failed in a row.
func (s *ChangeStream) poll(ctx context.Context) error {
	operation := ServiceName + "." + opGetResourceValueChanges
	failures := 0

	for {
		if !sleep(ctx, s.opts.PollDelay) {
			return nil
		}

		values, err := s.client.PollChanges(ctx, s.opts.PollTimeout)
		if ctx.Err() != nil {
			// An aborted poll is a cancellation, not a failure.
			return nil
		}

		if err != nil {
			failures++

			s.logger.Warn("poll failed",
				observability.Field{Key: "consecutive_failures", Value: failures},
				observability.Field{Key: "error", Value: err.Error()},
			)
			s.opts.Metrics.RecordRetry(failures, operation)

			if failures > s.opts.MaxConsecutiveFailures {
				s.logger.Error("giving up after repeated poll failures",
					observability.Field{Key: "consecutive_failures", Value: failures},
					observability.Field{Key: "error", Value: err.Error()},
				)
				s.opts.Metrics.RecordError(operation, "TooManyPollFailures")

				return errors.Mark(
					errors.Wrapf(err, "%d consecutive poll failures", failures),
					ErrTooManyPollFailures,
				)
			}

			if !sleep(ctx, retry.QuadraticBackoff(failures, s.opts.BackoffUnit)) {
				return nil
			}
			continue
		}

		failures = 0
		s.opts.Metrics.RecordChanges(len(values))

		for _, v := range values {
			select {
			case s.changes <- v:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// disable cancels the subscription. It runs detached from ctx so that a
// canceled stream still cleans up on the controller.
func (s *ChangeStream) disable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.DisableTimeout)
	defer cancel()

	sleep(ctx, s.opts.DisableDelay)

	ok, err := s.client.DisableNotifications(ctx, s.ids)
	if err == nil && !ok {
		err = errors.New("controller did not acknowledge")
	}
	if err != nil {
		s.logger.Error("failed to disable notifications",
			observability.Field{Key: "error", Value: err.Error()},
		)
		s.opts.Metrics.RecordError(ServiceName+"."+opDisableNotification, "StreamTeardown")
		return errors.Wrap(err, "failed to disable notifications")
	}

	s.logger.Debug("notifications disabled")
	return nil
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
