//go:build cgo

package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKuzuStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		s, err := NewKuzuStore(":memory:", DefaultSessionID)
		require.NoError(t, err, "NewKuzuStore should not fail")
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
