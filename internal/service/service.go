package service

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/study_planner/internal/events"
	"github.com/Skotchmaster/study_planner/internal/generation"
	"github.com/Skotchmaster/study_planner/internal/logging"
	"github.com/Skotchmaster/study_planner/internal/models"
	"github.com/Skotchmaster/study_planner/internal/repo"
)

const (
	minPasswordLen = 6
	minNameLen     = 2
	searchLimit    = 50
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd repo.UserUpdate) error
}

type PlanStore interface {
	CreatePlan(ctx context.Context, p *models.StudyPlan) error
	ListPlansByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.StudyPlan, error)
	FindPlanByID(ctx context.Context, id uuid.UUID) (*models.StudyPlan, error)
	DeletePlanByID(ctx context.Context, id uuid.UUID) error
	SearchPlans(ctx context.Context, ownerID uuid.UUID, q string, limit int) ([]models.StudyPlan, error)
	FindPlansByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.StudyPlan, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Document, error)
}

// publish is best effort: a broker outage never fails the request.
func publish(ctx context.Context, p events.Publisher, topic, key string, ev events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
