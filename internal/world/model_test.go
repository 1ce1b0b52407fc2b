package world

import (
	"context"
	"testing"

	"github.com/rescuesim/collapse/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	added   []core.EntityID
	removed []core.EntityID
}

func (l *recordingListener) EntityAdded(e core.Entity)   { l.added = append(l.added, e.EntityID()) }
func (l *recordingListener) EntityRemoved(e core.Entity) { l.removed = append(l.removed, e.EntityID()) }

func TestModel_AddAndQueryByType(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.AddEntity(&core.Road{ID: 5}))
	require.NoError(t, m.AddEntity(&core.Building{ID: 3}))
	require.NoError(t, m.AddEntity(&core.Building{ID: 1}))
	require.NoError(t, m.AddEntity(&core.Blockade{ID: 9, Position: 5}))

	buildings := m.Buildings()
	require.Len(t, buildings, 2)
	assert.Equal(t, core.EntityID(1), buildings[0].ID)
	assert.Equal(t, core.EntityID(3), buildings[1].ID)
	assert.Len(t, m.Roads(), 1)
	assert.Len(t, m.Blockades(), 1)
	assert.Equal(t, 4, m.Len())

	e, ok := m.Entity(5)
	require.True(t, ok)
	assert.IsType(t, &core.Road{}, e)
}

func TestModel_DuplicateEntity(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.AddEntity(&core.Building{ID: 1}))
	err := m.AddEntity(&core.Road{ID: 1})
	assert.ErrorIs(t, err, ErrDuplicateEntity)
}

func TestModel_ListenerNotifications(t *testing.T) {
	m := NewModel()
	l := &recordingListener{}
	m.AddListener(l)

	require.NoError(t, m.AddEntity(&core.Building{ID: 1}))
	require.NoError(t, m.AddEntity(&core.Road{ID: 2}))
	m.RemoveEntity(1)
	m.RemoveEntity(42)

	assert.Equal(t, []core.EntityID{1, 2}, l.added)
	assert.Equal(t, []core.EntityID{1}, l.removed)
}

func TestModel_RequestNewEntityIDs(t *testing.T) {
	m := NewModel()
	require.NoError(t, m.AddEntity(&core.Building{ID: 10}))

	ids, err := m.RequestNewEntityIDs(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []core.EntityID{11, 12, 13}, ids)

	ids, err = m.RequestNewEntityIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []core.EntityID{14}, ids)

	none, err := m.RequestNewEntityIDs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestModel_RequestNewEntityIDs_Cancelled(t *testing.T) {
	m := NewModel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.RequestNewEntityIDs(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModel_Merge(t *testing.T) {
	m := NewModel()
	cs := NewChangeSet()
	cs.AddEntities(&core.Blockade{ID: 7}, &core.Blockade{ID: 8})

	require.NoError(t, m.Merge(cs))
	assert.Len(t, m.Blockades(), 2)
}

func TestChangeSet(t *testing.T) {
	cs := NewChangeSet()
	assert.True(t, cs.IsEmpty())

	b := &core.Building{ID: 1}
	r := &core.Road{ID: 2}
	cs.AddChange(b, PropertyBrokenness, 40)
	cs.AddChange(r, PropertyBlockades, []core.EntityID{3})
	cs.AddChange(b, PropertyBrokenness, 60)

	assert.False(t, cs.IsEmpty())
	assert.Len(t, cs.Changes(), 3)

	broken := cs.ChangesFor(PropertyBrokenness)
	require.Len(t, broken, 2)
	assert.Equal(t, 60, broken[1].Value)
	assert.Equal(t, core.EntityID(1), broken[1].EntityID)
}
