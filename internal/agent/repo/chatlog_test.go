package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollenai/assistant/internal/agent/model"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func turnAt(userID, input, response string, ts time.Time) model.ChatTurn {
	return model.ChatTurn{
		UserID:      userID,
		UserInput:   input,
		BotResponse: response,
		Type:        model.ResponseTypeRAG,
		Timestamp:   ts,
	}
}

func TestChatLog_AppendAndRecentOrdering(t *testing.T) {
	ctx := context.Background()
	log := NewRedisChatLog(testRedis(t))

	base := time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(ctx, turnAt("u1", "first", "r1", base)))
	require.NoError(t, log.Append(ctx, turnAt("u1", "second", "r2", base.Add(time.Minute))))
	require.NoError(t, log.Append(ctx, turnAt("u1", "third", "r3", base.Add(2*time.Minute))))

	turns, err := log.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[0].UserInput)
	assert.Equal(t, "third", turns[2].UserInput)
}

func TestChatLog_RecentHonorsLimit(t *testing.T) {
	ctx := context.Background()
	log := NewRedisChatLog(testRedis(t))

	base := time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC)
	for i, input := range []string{"one", "two", "three", "four"} {
		require.NoError(t, log.Append(ctx, turnAt("u1", input, "r", base.Add(time.Duration(i)*time.Minute))))
	}

	turns, err := log.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "three", turns[0].UserInput, "limit keeps the most recent turns, oldest first")
	assert.Equal(t, "four", turns[1].UserInput)
}

func TestChatLog_RecentEmptyUser(t *testing.T) {
	log := NewRedisChatLog(testRedis(t))

	turns, err := log.Recent(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestChatLog_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	log := NewRedisChatLog(testRedis(t))

	ts := time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(ctx, turnAt("u1", "mine", "r", ts)))
	require.NoError(t, log.Append(ctx, turnAt("u2", "theirs", "r", ts)))

	turns, err := log.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "mine", turns[0].UserInput)
}

func TestChatLog_HistoryPairsMessages(t *testing.T) {
	ctx := context.Background()
	log := NewRedisChatLog(testRedis(t))

	ts := time.Date(2025, 7, 18, 10, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(ctx, turnAt("u1", "hello", "hi there", ts)))

	msgs, err := log.History(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "hi there", msgs[1].Content)
}
