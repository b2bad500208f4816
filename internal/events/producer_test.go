package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoBrokersIsNop(t *testing.T) {
	t.Parallel()

	p := New(nil)
	_, ok := p.(Nop)
	require.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), TopicUserEvents, "k", NewEvent(TypeUserRegistered, "u1", nil)))
	assert.NoError(t, p.Close())
}

func TestNew_WithBrokers(t *testing.T) {
	t.Parallel()

	p := New([]string{"localhost:9092"})
	prod, ok := p.(*Producer)
	require.True(t, ok)
	assert.Equal(t, "localhost:9092", prod.writer.Addr.String())
	assert.NoError(t, p.Close())
}

func TestRecorder_Types(t *testing.T) {
	t.Parallel()

	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), TopicPlanEvents, "p1", NewEvent(TypePlanGenerated, "u1", map[string]any{"plan_id": "p1"})))
	require.NoError(t, r.Publish(context.Background(), TopicPlanEvents, "p1", NewEvent(TypePlanDeleted, "u1", nil)))

	assert.Equal(t, []string{TypePlanGenerated, TypePlanDeleted}, r.Types())
	assert.Equal(t, TopicPlanEvents, r.Events[0].Topic)
}
