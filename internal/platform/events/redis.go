package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"huntserver/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

// Publisher pushes team status events (solves, unlocks, submissions) to
// whatever surface the presentation layer listens on. Services treat it
// as best-effort: publish failures are logged, never propagated.
type Publisher interface {
	PublishTeamStatus(ctx context.Context, teamID string, event interface{}) error
}

type redisPublisher struct {
	rdb           *redis.Client
	channelPrefix string
}

func NewRedisPublisher(rdb *redis.Client, channelPrefix string) Publisher {
	return &redisPublisher{rdb: rdb, channelPrefix: channelPrefix}
}

func (p *redisPublisher) PublishTeamStatus(ctx context.Context, teamID string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal team status event: %w", err)
	}
	channel := p.channelPrefix + ":" + teamID
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}
