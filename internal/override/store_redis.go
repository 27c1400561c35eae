package override

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const caseKeyPrefix = "overrides:"

// RedisStore keeps one hash per case, field per rule id. HSET gives upsert
// semantics for free, so concurrent saves for the same pair resolve
// last-write-wins.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore constructs a Redis-backed override store.
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Upsert(ctx context.Context, ovr Override) error {
	data, err := json.Marshal(ovr)
	if err != nil {
		return fmt.Errorf("encode override: %w", err)
	}
	if err := s.client.HSet(ctx, caseKeyPrefix+ovr.CaseID, ovr.RuleID, data).Err(); err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	return nil
}

func (s *RedisStore) ListByCase(ctx context.Context, caseID string) ([]Override, error) {
	fields, err := s.client.HGetAll(ctx, caseKeyPrefix+caseID).Result()
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}

	out := make([]Override, 0, len(fields))
	for ruleID, raw := range fields {
		var ovr Override
		if err := json.Unmarshal([]byte(raw), &ovr); err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "skipping corrupt override entry",
					"case_id", caseID,
					"rule_id", ruleID,
					"error", err,
				)
			}
			continue
		}
		out = append(out, ovr)
	}
	return out, nil
}
