package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena_AllocAndGet(t *testing.T) {
	var a arena

	id := a.alloc(Job{Name: "one"})
	j := a.get(id)
	require.NotNil(t, j)
	assert.Equal(t, "one", j.Name)
	assert.Equal(t, id, j.ID)
}

func TestArena_StaleIDAfterReuse(t *testing.T) {
	var a arena

	old := a.alloc(Job{Name: "first"})
	require.True(t, a.release(old))

	// The slot is reused with a bumped generation.
	fresh := a.alloc(Job{Name: "second"})
	assert.Equal(t, old.Slot, fresh.Slot)
	assert.NotEqual(t, old.Gen, fresh.Gen)

	// The stale ID must not reach the new occupant.
	assert.Nil(t, a.get(old))
	assert.False(t, a.release(old))

	j := a.get(fresh)
	require.NotNil(t, j)
	assert.Equal(t, "second", j.Name)
}

func TestArena_ReleaseIsIdempotent(t *testing.T) {
	var a arena

	id := a.alloc(Job{})
	assert.True(t, a.release(id))
	assert.False(t, a.release(id))
	assert.Nil(t, a.get(id))
}

func TestArena_OutOfRangeID(t *testing.T) {
	var a arena
	assert.Nil(t, a.get(JobID{Slot: 3, Gen: 1}))
	assert.Nil(t, a.get(JobID{Slot: -1, Gen: 1}))
}
