package exsub

import (
	"testing"

	"github.com/dshills/vicut/internal/vibuf"
)

func newTestBuffer(t *testing.T, s string) *vibuf.Buffer {
	t.Helper()
	return vibuf.FromString(s)
}
