package queue

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestScheduler_RegisterJobs(t *testing.T) {
	mr := miniredis.RunT(t)

	s := NewScheduler(asynq.RedisClientOpt{Addr: mr.Addr()}, "*/30 * * * *")
	assert.NoError(t, s.RegisterJobs())
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	mr := miniredis.RunT(t)

	s := NewScheduler(asynq.RedisClientOpt{Addr: mr.Addr()}, "every half hour")
	assert.Error(t, s.RegisterJobs())
}
