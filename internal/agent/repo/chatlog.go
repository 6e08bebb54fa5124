package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/pollenai/assistant/internal/agent/model"
	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// RedisChatLog persists chat turns in a per-user sorted set scored by
// timestamp, so reads come back in chronological order regardless of
// concurrent writers.
type RedisChatLog struct {
	rdb redis.Cmdable
}

func NewRedisChatLog(rdb redis.Cmdable) *RedisChatLog {
	return &RedisChatLog{rdb: rdb}
}

func (r *RedisChatLog) chatKey(userID string) string {
	return fmt.Sprintf("chatlog:%s:turns", userID)
}

func (r *RedisChatLog) Append(ctx context.Context, turn model.ChatTurn) error {
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("user_id", turn.UserID).Msg("failed to marshal chat turn")
		return fmt.Errorf("marshal chat turn: %w", err)
	}
	key := r.chatKey(turn.UserID)

	if err := r.rdb.ZAdd(ctx, key, redis.Z{
		Score:  float64(turn.Timestamp.UnixNano()),
		Member: b,
	}).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append chat turn to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Recent returns the most recent limit turns for the user, oldest first.
func (r *RedisChatLog) Recent(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error) {
	key := r.chatKey(userID)

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.rdb.ZRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.ChatTurn{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load chat history from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.ChatTurn, 0, len(rows))
	for i, s := range rows {
		var t model.ChatTurn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("user_id", userID).Int("index", i).Msg("failed to unmarshal chat turn")
			return nil, fmt.Errorf("unmarshal chat turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// History converts recent turns into planner-ready messages, oldest first.
func (r *RedisChatLog) History(ctx context.Context, userID string, limit int) ([]*schema.Message, error) {
	turns, err := r.Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	msgs := make([]*schema.Message, 0, len(turns)*2)
	for _, t := range turns {
		msgs = append(msgs, schema.UserMessage(t.UserInput))
		msgs = append(msgs, schema.AssistantMessage(t.BotResponse, nil))
	}
	return msgs, nil
}

var _ model.ChatLog = (*RedisChatLog)(nil)
