package memory_test

import (
	"testing"

	"github.com/goliatone/go-formcloud/pkg/store"
	"github.com/goliatone/go-formcloud/pkg/store/memory"
	"github.com/goliatone/go-formcloud/pkg/store/storetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) store.Store {
		s := memory.New()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
