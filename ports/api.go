package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// AuthAPI exchanges a signed challenge for a session token
type AuthAPI interface {
	EthLogin(ctx context.Context, req core.LoginRequest) (*core.LoginPayload, error)
}

// QueryAPI reads dashboard data, authenticated by a session token when one is given
type QueryAPI interface {
	Project(ctx context.Context, token, id string) (*core.Project, error)
	TopicSearch(ctx context.Context, token string, q core.TopicQuery) (*core.TopicSearch, error)
}
