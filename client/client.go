package client

import (
	"github.com/rmarchetti/stockroom-backend/pkg/config"
)

// Client bundles the per-entity state containers over a shared transport.
type Client struct {
	Requests      *RequestsStore
	Inventory     *InventoryStore
	Categories    *CategoriesStore
	Users         *UsersStore
	Notifications *NotificationsStore
}

// New builds the container set from configuration. When a fallback endpoint
// is configured the transports are layered so every call gets at most one
// retry against the secondary backend.
func New(cfg config.ClientConfig, opts Options, token func() string) (*Client, error) {
	primary, err := NewHTTPTransport(cfg.PrimaryEndpoint, cfg.RequestTimeout, WithToken(token))
	if err != nil {
		return nil, err
	}

	var transport Transport = primary
	if cfg.FallbackEndpoint != "" {
		secondary, err := NewHTTPTransport(cfg.FallbackEndpoint, cfg.RequestTimeout, WithToken(token))
		if err != nil {
			return nil, err
		}
		transport = NewFallbackTransport(primary, secondary, opts.Logger)
	}

	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = cfg.RetryAttempts
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = cfg.RetryBackoff
	}
	if opts.SettleDelay == 0 {
		opts.SettleDelay = cfg.SettleDelay
	}

	requestsStore, err := NewRequestsStore(transport, opts)
	if err != nil {
		return nil, err
	}
	inventoryStore, err := NewInventoryStore(transport, opts)
	if err != nil {
		return nil, err
	}
	categoriesStore, err := NewCategoriesStore(transport, opts)
	if err != nil {
		return nil, err
	}
	usersStore, err := NewUsersStore(transport, opts)
	if err != nil {
		return nil, err
	}
	notificationsStore, err := NewNotificationsStore(transport, opts)
	if err != nil {
		return nil, err
	}

	return &Client{
		Requests:      requestsStore,
		Inventory:     inventoryStore,
		Categories:    categoriesStore,
		Users:         usersStore,
		Notifications: notificationsStore,
	}, nil
}
