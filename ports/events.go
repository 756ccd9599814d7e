package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// EventPublisher publishes session lifecycle events to other components
type EventPublisher interface {
	PublishLogin(ctx context.Context, session *core.Session) error
	PublishLogout(ctx context.Context, address string, sessionID string) error
}
