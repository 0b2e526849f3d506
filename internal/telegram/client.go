// Package telegram connects the engine to the Telegram API through gotd: it
// authenticates the account, implements the remote gateway and seeds the
// store with dialogs and message history.
package telegram

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/domain"
	"github.com/danhigham/telecache/internal/remote"
	"github.com/danhigham/telecache/internal/store"
)

type Options struct {
	APIID      int
	APIHash    string
	SessionDir string

	FloodWaitMaxRetries int
	FloodWaitMaxWait    time.Duration

	// Media receives the files of synced messages; nil skips downloads.
	Media           ResourceStore
	MaxDocumentSize int64

	// Auth answers the login prompts when the session is not authorized.
	Auth auth.UserAuthenticator
}

// Client owns the MTProto connection of one account.
type Client struct {
	opts   Options
	store  *store.Store
	logger *zap.Logger

	client     *telegram.Client
	waiter     *floodwait.Waiter
	downloader *downloader.Downloader
	api        *tg.Client
	self       domain.PeerID
}

func New(opts Options, st *store.Store, logger *zap.Logger) *Client {
	return &Client{
		opts:       opts,
		store:      st,
		logger:     logger,
		downloader: downloader.NewDownloader(),
	}
}

// Run connects, authenticates if necessary and calls fn with a ready client.
// The connection is closed when fn returns.
func (c *Client) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	log := c.logger.Named("floodwait")
	c.waiter = floodwait.NewWaiter().
		WithMaxRetries(c.opts.FloodWaitMaxRetries).
		WithMaxWait(c.opts.FloodWaitMaxWait).
		WithCallback(func(ctx context.Context, wait floodwait.FloodWait) {
			log.Info("Flood wait", zap.Duration("wait", wait.Duration))
		})

	c.client = telegram.NewClient(c.opts.APIID, c.opts.APIHash, telegram.Options{
		Logger:         c.logger.Named("mtproto"),
		SessionStorage: &session.FileStorage{Path: filepath.Join(c.opts.SessionDir, "session.json")},
		Middlewares:    []telegram.Middleware{c.waiter},
	})

	return c.waiter.Run(ctx, func(ctx context.Context) error {
		return c.client.Run(ctx, func(ctx context.Context) error {
			if c.opts.Auth != nil {
				flow := auth.NewFlow(c.opts.Auth, auth.SendCodeOptions{})
				if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
					return fmt.Errorf("auth: %w", err)
				}
			}

			self, err := c.client.Self(ctx)
			if err != nil {
				return fmt.Errorf("get self: %w", err)
			}
			c.api = c.client.API()

			account := decodeUser(self)
			c.self = account.User.PeerID()
			err = c.store.Transaction(ctx, func(tx *store.Tx) error {
				return tx.UpdatePeers([]domain.Peer{account.User}, nil)
			})
			if err != nil {
				return fmt.Errorf("store self: %w", err)
			}
			c.logger.Info("Connected", zap.Stringer("account", c.self))

			return fn(ctx)
		})
	})
}

// Account returns the peer id of the authorized user. Valid inside Run.
func (c *Client) Account() domain.PeerID {
	return c.self
}

// Gateway returns the remote gateway bound to this connection. Valid inside Run.
func (c *Client) Gateway() remote.Gateway {
	return NewGateway(c.api)
}
