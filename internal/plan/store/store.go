// Package store persists plan snapshots: redis for fast session reads, the
// database as the durable copy. Redis is best effort; the database write is
// the one that can fail a save.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	obsmetrics "github.com/sunterra/sunplan/internal/observability/metrics"
	"github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	planKeyPrefix = "sunplan:plan:"
	planTTL       = 30 * 24 * time.Hour
)

type store struct {
	log     *zap.Logger
	repo    repository.Repository[domain.PlanRecord]
	redis   *redis.Client
	genID   *snowflake.Node
	metrics *obsmetrics.Metrics
}

type StoreParam struct {
	fx.In

	Log     *zap.Logger
	Repo    repository.Repository[domain.PlanRecord]
	Redis   *redis.Client `optional:"true"`
	GenID   *snowflake.Node
	Metrics *obsmetrics.Metrics
}

func Provide(p StoreParam) domain.Store {
	return &store{
		log:     p.Log.Named("plan.store"),
		repo:    p.Repo,
		redis:   p.Redis,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *store) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	record, err := s.repo.FindOne(ctx, &domain.PlanRecord{SessionID: snapshot.SessionID})
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if record == nil {
		record = &domain.PlanRecord{
			ID:        s.genID.Generate(),
			SessionID: snapshot.SessionID,
			CreatedAt: now,
		}
	}
	record.BrandSlug = snapshot.BrandSlug
	record.Snapshot = payload
	record.UpdatedAt = now

	if err := s.repo.Save(ctx, record); err != nil {
		return err
	}
	s.metrics.RecordSnapshotWrite(ctx, "db")

	if s.redis != nil {
		if err := s.redis.Set(ctx, planKeyPrefix+snapshot.SessionID, payload, planTTL).Err(); err != nil {
			s.log.Warn("snapshot cache write failed",
				zap.String("session_id", snapshot.SessionID), zap.Error(err))
		} else {
			s.metrics.RecordSnapshotWrite(ctx, "redis")
		}
	}
	return nil
}

func (s *store) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	if s.redis != nil {
		payload, err := s.redis.Get(ctx, planKeyPrefix+sessionID).Bytes()
		if err == nil {
			var snapshot domain.Snapshot
			if err := json.Unmarshal(payload, &snapshot); err == nil {
				return &snapshot, nil
			}
			s.log.Warn("cached snapshot invalid, reading database",
				zap.String("session_id", sessionID), zap.Error(err))
		} else if err != redis.Nil {
			s.log.Warn("snapshot cache read failed",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	record, err := s.repo.FindOne(ctx, &domain.PlanRecord{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrPlanNotFound
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(record.Snapshot, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
