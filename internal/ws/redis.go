package ws

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/brickduel/internal/session"
)

// StartEventSubscriber forwards session notices published on redis (idle
// pause, idle close) to the client attached to that session.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, session.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", session.EventsChannel)
		for {
			var msg *redis.Message
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", session.EventsChannel)
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				msg = m
			}

			notice, err := session.DecodeNotice([]byte(msg.Payload))
			if err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			if !hub.Connected(notice.SessionID) {
				log.Printf("[WS] no client for session %s; %s not delivered", notice.SessionID, notice.Type)
				continue
			}
			log.Printf("[WS] delivering %s to session %s", notice.Type, notice.SessionID)
			hub.Publish(notice.SessionID, notice)
		}
	}()
}
