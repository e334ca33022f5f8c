// Package storetest is the conformance suite every docstore backend runs.
package storetest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree/internal/docstore"
)

// Run exercises a fresh store from newStore against the docstore contract.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	open := func(t *testing.T) docstore.Store {
		s := newStore(t)
		t.Cleanup(func() { s.Close() })
		return s
	}

	t.Run("InsertAndGet", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		id, err := s.Insert(ctx, docstore.People, docstore.Fields{"firstName": "Ann", "birthDay": 3, "isActive": true})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := s.Get(ctx, docstore.People, id)
		require.NoError(t, err)
		assert.Equal(t, id, doc.ID)
		assert.Equal(t, "Ann", doc.Fields["firstName"])
		assert.Equal(t, float64(3), doc.Fields["birthDay"])
		assert.Equal(t, true, doc.Fields["isActive"])
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), docstore.People, "nope")
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("CollectionsAreIndependent", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		id, err := s.Insert(ctx, docstore.People, docstore.Fields{"isActive": true})
		require.NoError(t, err)

		_, err = s.Get(ctx, docstore.Families, id)
		require.ErrorIs(t, err, docstore.ErrNotFound)

		fams, err := s.List(ctx, docstore.Families)
		require.NoError(t, err)
		assert.Empty(t, fams)
	})

	t.Run("FindEqual", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		a, err := s.Insert(ctx, docstore.Relationships, docstore.Fields{"familyId": "f1", "isActive": true})
		require.NoError(t, err)
		b, err := s.Insert(ctx, docstore.Relationships, docstore.Fields{"familyId": "f1", "isActive": false})
		require.NoError(t, err)
		c, err := s.Insert(ctx, docstore.Relationships, docstore.Fields{"familyId": "f2", "isActive": true})
		require.NoError(t, err)
		_, err = s.Insert(ctx, docstore.Relationships, docstore.Fields{"familyId": "f3"})
		require.NoError(t, err)

		active, err := s.FindEqual(ctx, docstore.Relationships, "isActive", true)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a, c}, ids(active))

		inFamily, err := s.FindEqual(ctx, docstore.Relationships, "familyId", "f1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{a, b}, ids(inFamily))

		archived, err := s.FindEqual(ctx, docstore.Relationships, "isActive", false)
		require.NoError(t, err)
		assert.Equal(t, []string{b}, ids(archived))

		none, err := s.FindEqual(ctx, docstore.Relationships, "familyId", "zzz")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("MergeKeepsOtherFields", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		id, err := s.Insert(ctx, docstore.People, docstore.Fields{"firstName": "Ann", "lastName": "Smith", "isActive": true})
		require.NoError(t, err)

		require.NoError(t, s.Merge(ctx, docstore.People, id, docstore.Fields{"isActive": false, "deletedAt": "2024-01-01T00:00:00Z"}))

		doc, err := s.Get(ctx, docstore.People, id)
		require.NoError(t, err)
		assert.Equal(t, "Ann", doc.Fields["firstName"])
		assert.Equal(t, false, doc.Fields["isActive"])
		assert.Equal(t, "2024-01-01T00:00:00Z", doc.Fields["deletedAt"])

		active, err := s.FindEqual(ctx, docstore.People, "isActive", true)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("MergeMissing", func(t *testing.T) {
		s := open(t)
		err := s.Merge(context.Background(), docstore.People, "nope", docstore.Fields{"x": 1})
		require.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("PutUpserts", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Put(ctx, docstore.Families, "fixed-id", docstore.Fields{"name": "Smith", "isActive": true}))
		require.NoError(t, s.Put(ctx, docstore.Families, "fixed-id", docstore.Fields{"name": "Jones", "isActive": true}))

		doc, err := s.Get(ctx, docstore.Families, "fixed-id")
		require.NoError(t, err)
		assert.Equal(t, "Jones", doc.Fields["name"])

		all, err := s.List(ctx, docstore.Families)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ApplyIsAtomic", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		fam, err := s.Insert(ctx, docstore.Families, docstore.Fields{"isActive": true})
		require.NoError(t, err)
		rel, err := s.Insert(ctx, docstore.Relationships, docstore.Fields{"familyId": fam, "isActive": true})
		require.NoError(t, err)

		archive := docstore.Fields{"isActive": false}
		err = s.Apply(ctx, []docstore.Mutation{
			{Collection: docstore.Families, ID: fam, Fields: archive},
			{Collection: docstore.Relationships, ID: rel, Fields: archive},
			{Collection: docstore.Relationships, ID: "missing", Fields: archive},
		})
		require.ErrorIs(t, err, docstore.ErrNotFound)

		for _, m := range []struct{ c, id string }{{docstore.Families, fam}, {docstore.Relationships, rel}} {
			doc, err := s.Get(ctx, m.c, m.id)
			require.NoError(t, err)
			assert.Equal(t, true, doc.Fields["isActive"], "failed batch must not apply %s", m.c)
		}

		err = s.Apply(ctx, []docstore.Mutation{
			{Collection: docstore.Families, ID: fam, Fields: archive},
			{Collection: docstore.Relationships, ID: rel, Fields: archive},
		})
		require.NoError(t, err)

		active, err := s.FindEqual(ctx, docstore.Relationships, "isActive", true)
		require.NoError(t, err)
		assert.Empty(t, active)
		activeFams, err := s.FindEqual(ctx, docstore.Families, "isActive", true)
		require.NoError(t, err)
		assert.Empty(t, activeFams)
	})

	t.Run("ApplyEmpty", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Apply(context.Background(), nil))
	})
}

func ids(docs []docstore.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	sort.Strings(out)
	return out
}
