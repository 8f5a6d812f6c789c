// Command seed creates demo learners, completes activities for them through
// the regular service path and then re-evaluates badges for every profile.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/config"
	"github.com/learnhub/backend/internal/content"
	"github.com/learnhub/backend/internal/database"
	"github.com/learnhub/backend/internal/gamification"
	"github.com/learnhub/backend/internal/models"
)

type demoActivity struct {
	typ          models.ActivityType
	ref          string
	score, total int
}

type demoUser struct {
	clerkID, username, email string
	activities               []demoActivity
}

var demoUsers = []demoUser{
	{
		clerkID: "seed_ada", username: "ada", email: "ada@example.com",
		activities: []demoActivity{
			{typ: models.ActivityQuiz, ref: "caching-basics", score: 19, total: 20},
			{typ: models.ActivityLab, ref: "build-an-lru-cache"},
			{typ: models.ActivityTrackModule, ref: "system-design-foundations/caching"},
			{typ: models.ActivityTrackModule, ref: "system-design-foundations/load-balancing"},
			{typ: models.ActivityTrackModule, ref: "system-design-foundations/databases"},
		},
	},
	{
		clerkID: "seed_grace", username: "grace", email: "grace@example.com",
		activities: []demoActivity{
			{typ: models.ActivityQuiz, ref: "load-balancing", score: 7, total: 10},
			{typ: models.ActivityDeepDive, ref: "inside-kafka"},
			{typ: models.ActivityCheatsheet, ref: "big-o"},
		},
	},
	{
		clerkID: "seed_linus", username: "linus", email: "linus@example.com",
	},
}

func main() {
	backfillOnly := flag.Bool("backfill-only", false, "only re-run badge evaluation")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	catalog, err := content.Load()
	if err != nil {
		log.Fatalf("Failed to load content catalog: %v", err)
	}

	svc := gamification.NewService(gamification.NewStore(db), catalog, cfg.DailyGoalTarget)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if !*backfillOnly {
		for _, du := range demoUsers {
			user, err := auth.UpsertUser(ctx, db, du.clerkID, models.SyncUserRequest{Username: du.username, Email: du.email})
			if err != nil {
				log.Fatalf("[seed] upsert %s: %v", du.username, err)
			}
			for _, a := range du.activities {
				if err := complete(ctx, svc, user.ID, a); err != nil {
					log.Printf("[seed] %s %s %s: %v", du.username, a.typ, a.ref, err)
				}
			}
			log.Printf("[seed] %s ready with %d activities", du.username, len(du.activities))
		}
	}

	n, err := svc.BackfillBadges(ctx)
	if err != nil {
		log.Fatalf("[seed] badge backfill: %v", err)
	}
	log.Printf("[seed] badge backfill awarded %d badges", n)
}

func complete(ctx context.Context, svc *gamification.Service, userID string, a demoActivity) error {
	switch a.typ {
	case models.ActivityQuiz:
		_, err := svc.CompleteQuiz(ctx, userID, models.CompleteQuizRequest{Slug: a.ref, Score: a.score, Total: a.total})
		return err
	case models.ActivityTrackModule:
		track, module, ok := splitModuleRef(a.ref)
		if !ok {
			return errors.New("module ref must be track/module")
		}
		_, err := svc.CompleteTrackModule(ctx, userID, track, module)
		return err
	default:
		_, err := svc.CompleteActivity(ctx, userID, a.typ, a.ref, nil)
		return err
	}
}

func splitModuleRef(ref string) (track, module string, ok bool) {
	track, module, ok = strings.Cut(ref, "/")
	return track, module, ok && track != "" && module != ""
}
