// Package redisfeed relays docstore change signals across instances over
// Redis pub/sub, so a subscription on one API instance sees writes made by
// another.
package redisfeed

import (
	"context"
	"sync"

	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	redisclient "github.com/nexwaste/nexwaste-backend/pkg/redis"
)

// Bridge is a docstore.Notifier that routes change signals through the
// shared Redis channel. Redis delivers published messages back to this
// instance too, so local subscriptions are fed by the inbound pump and no
// signal travels twice.
type Bridge struct {
	client *redisclient.Client
	feed   *docstore.Feed
	logg   *logger.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start subscribes to the shared channel and begins relaying inbound signals
// into the local feed. Writers should publish through the returned bridge
// instead of the feed.
func Start(ctx context.Context, client *redisclient.Client, feed *docstore.Feed, logg *logger.Logger) (*Bridge, error) {
	runCtx, cancel := context.WithCancel(context.Background())

	sub, err := client.Subscribe(runCtx, client.FeedChannel())
	if err != nil {
		cancel()
		return nil, err
	}

	b := &Bridge{
		client: client,
		feed:   feed,
		logg:   logg,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(b.done)
		ch := sub.Channel()
		for {
			select {
			case <-runCtx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				feed.Publish(msg.Payload)
			}
		}
	}()

	return b, nil
}

// Publish sends the change signal over Redis. Delivery back into the local
// feed happens through the inbound pump.
func (b *Bridge) Publish(collection string) {
	if err := b.client.Publish(context.Background(), b.client.FeedChannel(), collection); err != nil {
		if b.logg != nil {
			b.logg.Error(context.Background(), "publishing change signal", err)
		}
		// Keep local subscriptions live even when Redis is down.
		b.feed.Publish(collection)
	}
}

// Close stops the inbound pump and waits for it to exit.
func (b *Bridge) Close() {
	b.once.Do(func() {
		b.cancel()
		<-b.done
	})
}
