package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "notifications:"

// Notice is pushed to a user when something lands in their feed.
type Notice struct {
	Type     string      `json:"type"`
	Activity interface{} `json:"activity"`
}

// Notifier delivers notices on a best-effort basis; failures are logged,
// never returned.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, n Notice)
}

func Channel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// HubNotifier delivers straight to the local hub.
type HubNotifier struct {
	Hub *Hub
}

func (n HubNotifier) Notify(_ context.Context, userID uuid.UUID, notice Notice) {
	n.Hub.SendToUser(userID, notice)
}

// RedisNotifier publishes to notifications:<uid> so every API instance can
// deliver to its own connected clients.
type RedisNotifier struct {
	RDB *redis.Client
	Log *zap.Logger
}

func (n RedisNotifier) Notify(ctx context.Context, userID uuid.UUID, notice Notice) {
	payload, err := json.Marshal(notice)
	if err != nil {
		n.Log.Error("marshal notice", zap.Error(err))
		return
	}
	if err := n.RDB.Publish(ctx, Channel(userID), payload).Err(); err != nil {
		n.Log.Warn("publish notice", zap.String("user", userID.String()), zap.Error(err))
	}
}

// Subscribe forwards every notifications:* message to the hub until ctx
// is done.
func Subscribe(ctx context.Context, rdb *redis.Client, hub *Hub, log *zap.Logger) {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, err := uuid.Parse(strings.TrimPrefix(msg.Channel, channelPrefix))
			if err != nil {
				log.Warn("bad notification channel", zap.String("channel", msg.Channel))
				continue
			}
			hub.SendRaw(userID, []byte(msg.Payload))
		}
	}
}
