package gamification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreakWorkerRun(t *testing.T) {
	env := newTestEnv(t)
	env.repo.addUser("u1")
	_, _, err := env.svc.UpdateStreak(context.Background(), "u1")
	require.NoError(t, err)
	env.advance(72 * time.Hour)

	w, err := NewStreakWorker(env.svc)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	w.Run()

	u, _ := env.repo.GetUserByID(context.Background(), "u1")
	assert.Equal(t, 0, u.Streak)

	jobs := w.scheduler.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "streak-sweep", jobs[0].Name())
}
