package memory

import (
	"testing"

	"familytree/internal/docstore"
	"familytree/internal/docstore/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) docstore.Store {
		return New()
	})
}
