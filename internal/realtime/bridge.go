// Package realtime republishes row-level database changes to connected users.
//
// Triggers installed by the migrations emit pg_notify events on the
// row_changes channel. The bridge resolves the owning user for each event and
// pushes it to that user's websocket clients. Ownership comes straight from
// the row for user-keyed tables; transaction rows carry only an account id, so
// the bridge looks the account up itself — the feed cannot filter on a joined
// table.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/lib/pq"

	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/websocket"
)

const Channel = "row_changes"

type AccountLookup interface {
	GetByID(ctx context.Context, accountID string) (models.Account, error)
}

type Broadcaster interface {
	Broadcast(userID string, event websocket.Event)
}

type event struct {
	Table  string         `json:"table"`
	Action string         `json:"action"`
	Row    map[string]any `json:"row"`
}

type Bridge struct {
	notifications <-chan *pq.Notification
	closeFn       func() error
	accounts      AccountLookup
	hub           Broadcaster

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

// New attaches the bridge to a pq listener and subscribes it to the
// row_changes channel.
func New(listener *pq.Listener, accounts AccountLookup, hub Broadcaster) (*Bridge, error) {
	if err := listener.Listen(Channel); err != nil {
		return nil, err
	}
	return newBridge(listener.Notify, listener.Close, accounts, hub), nil
}

func newBridge(notifications <-chan *pq.Notification, closeFn func() error, accounts AccountLookup, hub Broadcaster) *Bridge {
	return &Bridge{
		notifications: notifications,
		closeFn:       closeFn,
		accounts:      accounts,
		hub:           hub,
		done:          make(chan struct{}),
	}
}

// Run consumes the change feed until the context is cancelled or the bridge
// is closed. A nil notification marks a listener reconnect and is skipped.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case notification, ok := <-b.notifications:
			if !ok {
				return
			}
			if notification == nil {
				continue
			}
			b.dispatch(ctx, notification.Extra)
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, payload string) {
	var ev event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("realtime: dropping malformed event: %v", err)
		return
	}
	userID, ok := b.resolveOwner(ctx, ev)
	if !ok {
		return
	}
	b.hub.Broadcast(userID, websocket.Event{
		Table:  ev.Table,
		Action: ev.Action,
		Row:    ev.Row,
	})
}

func (b *Bridge) resolveOwner(ctx context.Context, ev event) (string, bool) {
	switch ev.Table {
	case "accounts", "cards", "notifications":
		userID, _ := ev.Row["user_id"].(string)
		return userID, userID != ""
	case "transactions":
		accountID, _ := ev.Row["account_id"].(string)
		if accountID == "" {
			return "", false
		}
		account, err := b.accounts.GetByID(ctx, accountID)
		if err != nil {
			log.Printf("realtime: owner lookup for account %s failed: %v", accountID, err)
			return "", false
		}
		return account.UserID, account.UserID != ""
	default:
		return "", false
	}
}

// Close tears the subscription down. Safe to call more than once.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
		if b.closeFn != nil {
			b.closeErr = b.closeFn()
		}
	})
	return b.closeErr
}
