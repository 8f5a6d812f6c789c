package gamification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StreakWorker resets broken streaks once a day, shortly after UTC midnight.
type StreakWorker struct {
	service   *Service
	scheduler gocron.Scheduler
}

func NewStreakWorker(service *Service) (*StreakWorker, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	w := &StreakWorker{service: service, scheduler: s}
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(w.Run),
		gocron.WithName("streak-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule streak sweep: %w", err)
	}
	return w, nil
}

func (w *StreakWorker) Start() {
	log.Println("[gamification] streak sweep scheduled daily at 00:05 UTC")
	w.scheduler.Start()
}

func (w *StreakWorker) Stop() error {
	return w.scheduler.Shutdown()
}

// Run performs a single sweep.
func (w *StreakWorker) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := w.service.SweepStreaks(ctx)
	if err != nil {
		log.Printf("[gamification] streak sweep failed: %v", err)
		return
	}
	log.Printf("[gamification] streak sweep reset %d streaks", n)
}
