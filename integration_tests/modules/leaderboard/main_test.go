//go:build integration

package leaderboardintegrationtests

import (
	"os"
	"testing"

	"github.com/Black-And-White-Club/envsim/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutils.Shutdown()
	os.Exit(code)
}
