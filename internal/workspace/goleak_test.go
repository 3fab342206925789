package workspace

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain checks that concurrent index access in tests leaves no goroutines behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
