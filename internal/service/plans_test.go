package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/study_planner/internal/apperr"
	"github.com/Skotchmaster/study_planner/internal/events"
	"github.com/Skotchmaster/study_planner/internal/generation"
	"github.com/Skotchmaster/study_planner/internal/models"
	"github.com/Skotchmaster/study_planner/internal/repo"
	"github.com/Skotchmaster/study_planner/internal/repo/repotest"
)

type generatorFunc func(ctx context.Context, req generation.Request) (*generation.Document, error)

func (f generatorFunc) Generate(ctx context.Context, req generation.Request) (*generation.Document, error) {
	return f(ctx, req)
}

type fakeIndex struct {
	indexed   []uuid.UUID
	deleted   []uuid.UUID
	hits      []uuid.UUID
	searchErr error
}

func (f *fakeIndex) IndexPlan(_ context.Context, p *models.StudyPlan) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeletePlan(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchPlans(context.Context, uuid.UUID, string, int) ([]uuid.UUID, error) {
	return f.hits, f.searchErr
}

func okGenerator(calls *[]generation.Request) Generator {
	return generatorFunc(func(_ context.Context, req generation.Request) (*generation.Document, error) {
		*calls = append(*calls, req)
		return &generation.Document{Subjects: []json.RawMessage{
			json.RawMessage(`{"topic":"Goroutines","interval":"day 1"}`),
		}}, nil
	})
}

func newPlanService(t *testing.T, gen Generator) (*PlanService, *repo.GormRepo, *events.Recorder) {
	t.Helper()
	store := repotest.New(t)
	rec := &events.Recorder{}
	return &PlanService{Plans: store, Generator: gen, Events: rec}, store, rec
}

func TestGenerate_StoresOnePlan(t *testing.T) {
	t.Parallel()

	var calls []generation.Request
	svc, _, rec := newPlanService(t, okGenerator(&calls))
	idx := &fakeIndex{}
	svc.Index = idx
	owner := uuid.New()
	ctx := context.Background()

	plan, err := svc.Generate(ctx, owner, GenerateInput{Subject: "Go", Goal: "concurrency", DeadlineDays: 30})
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, generation.Request{Subject: "Go", Goal: "concurrency", Deadline: 30, UserID: owner.String()}, calls[0])

	assert.Equal(t, owner, plan.UserID)
	assert.Equal(t, "1 mês", plan.Deadline)
	assert.JSONEq(t, `{"subjects":[{"topic":"Goroutines","interval":"day 1"}]}`, plan.Content)
	assert.Equal(t, []uuid.UUID{plan.ID}, idx.indexed)
	assert.Equal(t, []string{events.TypePlanGenerated}, rec.Types())

	plans, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, plan.ID, plans[0].ID)
}

func TestGenerate_Validation(t *testing.T) {
	t.Parallel()

	var calls []generation.Request
	svc, _, _ := newPlanService(t, okGenerator(&calls))

	inputs := []GenerateInput{
		{Goal: "g", DeadlineDays: 3},
		{Subject: "s", DeadlineDays: 3},
		{Subject: "s", Goal: "g"},
		{Subject: "s", Goal: "g", DeadlineDays: -1},
	}
	for _, in := range inputs {
		_, err := svc.Generate(context.Background(), uuid.New(), in)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
	assert.Empty(t, calls)
}

func TestGenerate_FailureStoresNothing(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{
		apperr.ErrGenerationTimeout,
		apperr.ErrGenerationMalformed,
		apperr.ErrConfiguration,
	} {
		gen := generatorFunc(func(context.Context, generation.Request) (*generation.Document, error) {
			return nil, sentinel
		})
		svc, _, rec := newPlanService(t, gen)
		owner := uuid.New()

		_, err := svc.Generate(context.Background(), owner, GenerateInput{Subject: "Go", Goal: "g", DeadlineDays: 5})
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)

		plans, err := svc.List(context.Background(), owner)
		require.NoError(t, err)
		assert.Empty(t, plans)
		assert.Empty(t, rec.Events)
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	t.Parallel()

	var calls []generation.Request
	svc, _, rec := newPlanService(t, okGenerator(&calls))
	idx := &fakeIndex{}
	svc.Index = idx
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	plan, err := svc.Generate(ctx, owner, GenerateInput{Subject: "Go", Goal: "g", DeadlineDays: 5})
	require.NoError(t, err)

	err = svc.Delete(ctx, other, plan.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	plans, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	require.NoError(t, svc.Delete(ctx, owner, plan.ID))
	plans, err = svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.Equal(t, []uuid.UUID{plan.ID}, idx.deleted)
	assert.Equal(t, []string{events.TypePlanGenerated, events.TypePlanDeleted}, rec.Types())

	err = svc.Delete(ctx, owner, plan.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	var calls []generation.Request
	svc, _, _ := newPlanService(t, okGenerator(&calls))
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	goPlan, err := svc.Generate(ctx, owner, GenerateInput{Subject: "Golang", Goal: "channels", DeadlineDays: 5})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, owner, GenerateInput{Subject: "Biology", Goal: "cells", DeadlineDays: 5})
	require.NoError(t, err)
	foreign, err := svc.Generate(ctx, other, GenerateInput{Subject: "Golang", Goal: "x", DeadlineDays: 5})
	require.NoError(t, err)

	_, err = svc.Search(ctx, owner, "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// store fallback
	got, err := svc.Search(ctx, owner, "golang")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, goPlan.ID, got[0].ID)

	// index hits are re-checked against the owner
	svc.Index = &fakeIndex{hits: []uuid.UUID{goPlan.ID, foreign.ID}}
	got, err = svc.Search(ctx, owner, "golang")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, goPlan.ID, got[0].ID)

	// index outage falls back to the store
	svc.Index = &fakeIndex{searchErr: errors.New("es down")}
	got, err = svc.Search(ctx, owner, "cells")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Biology", got[0].Subject)
}
