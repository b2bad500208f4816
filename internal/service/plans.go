package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/events"
	"github.com/Skotchmaster/study_planner/internal/generation"
	"github.com/Skotchmaster/study_planner/internal/logging"
	"github.com/Skotchmaster/study_planner/internal/models"
	"github.com/Skotchmaster/study_planner/internal/search"
)

type PlanService struct {
	Plans     PlanStore
	Generator Generator
	// Index is optional; without it search runs against the store.
	Index  search.Index
	Events events.Publisher
}

type GenerateInput struct {
	Subject      string `json:"subject"`
	Goal         string `json:"goal"`
	DeadlineDays int    `json:"deadlineDays"`
}

func (s *PlanService) List(ctx context.Context, owner uuid.UUID) ([]models.StudyPlan, error) {
	plans, err := s.Plans.ListPlansByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// Generate makes one generation call and stores one plan for it. Nothing is
// stored when the call fails.
func (s *PlanService) Generate(ctx context.Context, owner uuid.UUID, in GenerateInput) (*models.StudyPlan, error) {
	l := logging.FromContext(ctx).With("service", "plan_generate", "user_id", owner.String())

	subject := strings.TrimSpace(in.Subject)
	goal := strings.TrimSpace(in.Goal)
	if subject == "" || goal == "" || in.DeadlineDays == 0 {
		return nil, apperr.Validation("all fields are required")
	}
	if in.DeadlineDays < 0 {
		return nil, apperr.Validation("invalid deadline")
	}

	doc, err := s.Generator.Generate(ctx, generation.Request{
		Subject:  subject,
		Goal:     goal,
		Deadline: in.DeadlineDays,
		UserID:   owner.String(),
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConfiguration) {
			logging.Critical(ctx, "generation_failed", "reason", "generation endpoint is not configured")
		} else {
			l.Error("generation_failed", "error", err)
		}
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	content, err := doc.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}

	plan := &models.StudyPlan{
		UserID:   owner,
		Subject:  subject,
		Goal:     goal,
		Deadline: generation.DeadlineLabel(in.DeadlineDays),
		Content:  content,
	}
	// the upstream answer is already paid for; a client disconnect must not drop it
	storeCtx := context.WithoutCancel(ctx)
	if err := s.Plans.CreatePlan(storeCtx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.IndexPlan(storeCtx, plan); err != nil {
			l.Warn("plan_index_failed", "plan_id", plan.ID.String(), "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicPlanEvents, owner.String(),
		events.NewEvent(events.TypePlanGenerated, owner.String(), map[string]any{
			"plan_id":  plan.ID.String(),
			"subject":  plan.Subject,
			"subjects": len(doc.Subjects),
		}))
	l.Info("plan_generated", "plan_id", plan.ID.String(), "subjects", len(doc.Subjects))
	return plan, nil
}

func (s *PlanService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("service", "plan_delete", "user_id", owner.String())

	plan, err := s.Plans.FindPlanByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrNotFound, "plan not found")
		}
		return fmt.Errorf("find plan: %w", err)
	}
	if plan.UserID != owner {
		l.Warn("plan_delete_denied", "plan_id", id.String())
		return apperr.New(apperr.ErrAuthorization, "forbidden")
	}

	if err := s.Plans.DeletePlanByID(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.New(apperr.ErrNotFound, "plan not found")
		}
		return fmt.Errorf("delete plan: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeletePlan(ctx, id); err != nil {
			l.Warn("plan_unindex_failed", "plan_id", id.String(), "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicPlanEvents, owner.String(),
		events.NewEvent(events.TypePlanDeleted, owner.String(), map[string]any{"plan_id": id.String()}))
	l.Info("plan_deleted", "plan_id", id.String())
	return nil
}

// Search only ever returns the owner's plans, whichever backend answers.
func (s *PlanService) Search(ctx context.Context, owner uuid.UUID, q string) ([]models.StudyPlan, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperr.Validation("query is required")
	}

	if s.Index != nil {
		ids, err := s.Index.SearchPlans(ctx, owner, q, searchLimit)
		if err == nil {
			plans, err := s.Plans.FindPlansByIDs(ctx, owner, ids)
			if err != nil {
				return nil, fmt.Errorf("load plans: %w", err)
			}
			return plans, nil
		}
		logging.FromContext(ctx).Warn("plan_search_fallback", "error", err)
	}

	plans, err := s.Plans.SearchPlans(ctx, owner, q, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search plans: %w", err)
	}
	return plans, nil
}
