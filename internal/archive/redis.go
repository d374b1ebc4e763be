// Package archive mirrors terminal job snapshots into Redis so status
// stays readable after a job is removed from the live registry. Entries
// expire by TTL; the live registry never does.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"muxminus-backend/internal/entity"
)

var ErrNotFound = errors.New("archived job not found")

type RedisArchive struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisArchive(rdb *redis.Client, ttl time.Duration) *RedisArchive {
	return &RedisArchive{rdb: rdb, ttl: ttl}
}

func key(jobID string) string { return "job:" + jobID }

// RecordTerminal stores the final job snapshot. Implements queue.Sink.
func (a *RedisArchive) RecordTerminal(ctx context.Context, job entity.Job) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Printf("[archive] job_id=%s marshal error=%v", job.ID, err)
		return
	}
	if err := a.rdb.Set(ctx, key(job.ID), data, a.ttl).Err(); err != nil {
		log.Printf("[archive] job_id=%s save error=%v", job.ID, err)
	}
}

func (a *RedisArchive) Get(ctx context.Context, jobID string) (entity.Job, error) {
	val, err := a.rdb.Get(ctx, key(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.Job{}, ErrNotFound
		}
		return entity.Job{}, fmt.Errorf("archive get: %w", err)
	}
	var job entity.Job
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return entity.Job{}, fmt.Errorf("archive decode: %w", err)
	}
	return job, nil
}
