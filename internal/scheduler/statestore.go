package scheduler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/zlog"
)

const stateTTL = time.Hour

// StateStore persists per-client view state in redis so a viewer that
// reconnects with the same client id resumes where it left off. Entries
// expire after an hour of inactivity.
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

func clientKey(clientID string) string {
	return "moxnotify:client:" + clientID + ":state"
}

// Load returns the saved state for the client, or a fresh default when
// nothing is stored or redis is unreachable.
func (s *StateStore) Load(ctx context.Context, clientID string, maxVisible int) *ViewState {
	state := NewViewState(maxVisible)

	fields, err := s.rdb.HGetAll(ctx, clientKey(clientID)).Result()
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("client", clientID).Msg("failed to load client state, using defaults")
		return state
	}
	if len(fields) == 0 {
		zlog.Logger.Debug().Str("client", clientID).Msg("no saved client state, using defaults")
		return state
	}

	if raw, ok := fields["selected_id"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			state.setSelected(uint32(id))
		}
	}
	if raw, ok := fields["range_start"]; ok {
		if v, err := strconv.Atoi(raw); err == nil {
			state.Range.Start = v
		}
	}
	if raw, ok := fields["range_end"]; ok {
		if v, err := strconv.Atoi(raw); err == nil {
			state.Range.End = v
		}
	}
	if raw, ok := fields["prev_visible_ids"]; ok {
		var ids []uint32
		if err := json.Unmarshal([]byte(raw), &ids); err == nil {
			state.PrevVisible = ids
		}
	}

	return state
}

// Save writes the state back and refreshes the TTL.
func (s *StateStore) Save(ctx context.Context, clientID string, state *ViewState) {
	key := clientKey(clientID)

	fields := map[string]interface{}{
		"range_start": strconv.Itoa(state.Range.Start),
		"range_end":   strconv.Itoa(state.Range.End),
		"max_visible": strconv.Itoa(state.Range.MaxVisible),
	}
	if id, ok := state.SelectedID(); ok {
		fields["selected_id"] = strconv.FormatUint(uint64(id), 10)
	}
	if prev, err := json.Marshal(state.PrevVisible); err == nil {
		fields["prev_visible_ids"] = string(prev)
	}

	if err := s.rdb.HSet(ctx, key, fields).Err(); err != nil {
		zlog.Logger.Warn().Err(err).Str("client", clientID).Msg("failed to save client state")
		return
	}
	if _, ok := state.SelectedID(); !ok {
		if err := s.rdb.HDel(ctx, key, "selected_id").Err(); err != nil {
			zlog.Logger.Warn().Err(err).Str("client", clientID).Msg("failed to clear selection")
		}
	}

	_ = s.rdb.Expire(ctx, key, stateTTL).Err()
}

// Delete drops the saved state.
func (s *StateStore) Delete(ctx context.Context, clientID string) {
	if err := s.rdb.Del(ctx, clientKey(clientID)).Err(); err != nil {
		zlog.Logger.Warn().Err(err).Str("client", clientID).Msg("failed to delete client state")
	}
}
