package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree/internal/docstore"
	"familytree/internal/models"
)

func TestSnapshotsAreImmutable(t *testing.T) {
	c := New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c.SetPeople([]models.Person{{ID: "p1", FirstName: "Ann"}}, t0)
	before := c.Snapshot()

	c.SetFamilies([]models.Family{{ID: "f1", Name: "Smith"}}, t0.Add(time.Minute))
	after := c.Snapshot()

	assert.Empty(t, before.Families, "earlier snapshot must not see later loads")
	assert.True(t, before.LoadedAt(docstore.Families).IsZero())

	require.Len(t, after.People, 1)
	f, ok := after.Family("f1")
	require.True(t, ok)
	assert.Equal(t, "Smith", f.Name)
	assert.Equal(t, t0, after.LoadedAt(docstore.People))
	assert.Equal(t, t0.Add(time.Minute), after.LoadedAt(docstore.Families))
}

func TestLookups(t *testing.T) {
	c := New()
	c.SetPeople([]models.Person{{ID: "p1", FirstName: "Ann"}, {ID: "p2", FirstName: "Bob"}}, time.Now())

	snap := c.Snapshot()
	p, ok := snap.Person("p2")
	require.True(t, ok)
	assert.Equal(t, "Bob", p.FirstName)

	p.FirstName = "changed"
	again, _ := snap.Person("p2")
	assert.Equal(t, "Bob", again.FirstName, "lookups return copies")

	_, ok = snap.Person("missing")
	assert.False(t, ok)
	_, ok = snap.Family("missing")
	assert.False(t, ok)
}

func TestConcurrentWriters(t *testing.T) {
	c := New()
	now := time.Now()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); c.SetPeople([]models.Person{{ID: "p"}}, now) }()
	go func() { defer wg.Done(); c.SetFamilies([]models.Family{{ID: "f"}}, now) }()
	go func() { defer wg.Done(); c.SetRelationships([]models.Relationship{{ID: "r"}}, now) }()
	wg.Wait()

	snap := c.Snapshot()
	assert.Len(t, snap.People, 1)
	assert.Len(t, snap.Families, 1)
	assert.Len(t, snap.Relationships, 1)
	for _, coll := range []string{docstore.People, docstore.Families, docstore.Relationships} {
		assert.False(t, snap.LoadedAt(coll).IsZero(), coll)
	}
}
