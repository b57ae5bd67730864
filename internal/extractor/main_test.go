package extractor

import (
	"testing"

	"go.uber.org/goleak"
)

// ExtractAll fans out over an errgroup; every test must leave no workers behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
