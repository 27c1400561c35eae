//go:build integration

package override_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"casegate/internal/override"
	"casegate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *override.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = override.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "rule_overrides"))
}

func (s *PostgresStoreSuite) TestUpsertAndList() {
	ctx := context.Background()
	ovr := override.Override{
		ID:           "override_1",
		CaseID:       "case-001",
		RuleID:       "DOC.PASSPORT.REQUIRED",
		Reason:       "passport sighted",
		OverriddenBy: "reviewer-1",
		Timestamp:    time.Now().UTC().Truncate(time.Microsecond),
	}
	s.Require().NoError(s.store.Upsert(ctx, ovr))

	got, err := s.store.ListByCase(ctx, "case-001")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(ovr.Reason, got[0].Reason)
	s.True(ovr.Timestamp.Equal(got[0].Timestamp))
}

func (s *PostgresStoreSuite) TestUpsertReplacesSamePair() {
	ctx := context.Background()
	base := override.Override{
		ID:           "override_1",
		CaseID:       "case-001",
		RuleID:       "DOC.PASSPORT.REQUIRED",
		Reason:       "first",
		OverriddenBy: "reviewer-1",
		Timestamp:    time.Now().UTC(),
	}
	s.Require().NoError(s.store.Upsert(ctx, base))

	base.ID = "override_2"
	base.Reason = "revised"
	s.Require().NoError(s.store.Upsert(ctx, base))

	got, err := s.store.ListByCase(ctx, "case-001")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("override_2", got[0].ID)
	s.Equal("revised", got[0].Reason)
}

func (s *PostgresStoreSuite) TestListScopedToCase() {
	ctx := context.Background()
	for _, caseID := range []string{"case-001", "case-002"} {
		s.Require().NoError(s.store.Upsert(ctx, override.Override{
			ID:           "override_" + caseID,
			CaseID:       caseID,
			RuleID:       "CASE.STATE.VALID",
			Reason:       "checked",
			OverriddenBy: "reviewer-1",
			Timestamp:    time.Now().UTC(),
		}))
	}

	got, err := s.store.ListByCase(ctx, "case-001")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("case-001", got[0].CaseID)
}

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *override.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = override.NewRedisStore(s.redis.Client, nil)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestUpsertAndList() {
	ctx := context.Background()
	ovr := override.Override{
		ID:           "override_1",
		CaseID:       "case-001",
		RuleID:       "DOC.PASSPORT.REQUIRED",
		Reason:       "passport sighted",
		OverriddenBy: "reviewer-1",
		Timestamp:    time.Now().UTC().Truncate(time.Second),
	}
	s.Require().NoError(s.store.Upsert(ctx, ovr))

	got, err := s.store.ListByCase(ctx, "case-001")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(ovr.RuleID, got[0].RuleID)
}

func (s *RedisStoreSuite) TestUpsertReplacesSamePair() {
	ctx := context.Background()
	ovr := override.Override{
		ID:     "override_1",
		CaseID: "case-001",
		RuleID: "DOC.PASSPORT.REQUIRED",
		Reason: "first",
	}
	s.Require().NoError(s.store.Upsert(ctx, ovr))

	ovr.Reason = "revised"
	s.Require().NoError(s.store.Upsert(ctx, ovr))

	got, err := s.store.ListByCase(ctx, "case-001")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("revised", got[0].Reason)
}

func (s *RedisStoreSuite) TestCorruptEntrySkipped() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, override.Override{
		ID:     "override_1",
		CaseID: "case-001",
		RuleID: "DOC.PASSPORT.REQUIRED",
		Reason: "valid",
	}))
	s.Require().NoError(s.redis.Client.HSet(ctx, "overrides:case-001", "BROKEN.RULE", "{not json").Err())

	got, err := s.store.ListByCase(ctx, "case-001")
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("DOC.PASSPORT.REQUIRED", got[0].RuleID)
}
