package resource

import (
	"context"
	"time"
)

// NotificationClient is the subscription triad the change stream is built on.
// APIClient implements it against the controller; tests substitute a mock.
type NotificationClient interface {
	// EnableNotifications subscribes to changes of ids and returns their current values.
	EnableNotifications(ctx context.Context, ids []ID) ([]Value, error)

	// PollChanges long-polls for changes of all subscribed resources. The
	// controller answers as soon as something changed, or with an empty list
	// once timeout has elapsed.
	PollChanges(ctx context.Context, timeout time.Duration) ([]Value, error)

	// DisableNotifications cancels the subscription of ids. The result is the
	// controller's acknowledgement.
	DisableNotifications(ctx context.Context, ids []ID) (bool, error)
}

// ResourceAPIClient defines the interface for resource service operations.
// This interface enables consumers to create mock implementations for testing.
//
// Example usage with testify/mock:
//
//	type MockClient struct {
//	    mock.Mock
//	}
//
//	func (m *MockClient) GetValues(ctx context.Context, ids []resource.ID) ([]resource.Value, error) {
//	    args := m.Called(ctx, ids)
//	    return args.Get(0).([]resource.Value), args.Error(1)
//	}
//
//nolint:revive // ResourceAPIClient is intentionally explicit to avoid confusion with APIClient struct
type ResourceAPIClient interface {
	NotificationClient

	// GetValues reads the current values of ids.
	GetValues(ctx context.Context, ids []ID) ([]Value, error)

	// SetValues writes values to the controller.
	SetValues(ctx context.Context, values []Value) error

	// StreamChanges subscribes to ids and streams their changes until ctx is
	// canceled or the stream is closed.
	StreamChanges(ctx context.Context, ids []ID, opts *StreamOptions) (*ChangeStream, error)
}
