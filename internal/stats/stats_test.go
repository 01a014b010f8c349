package stats

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsUpdater(t *testing.T) {
	su := NewStatsUpdater(http.NewServeMux())
	su.RegisterMetric("MessagesSent")
	su.Run()
	defer su.Stop()

	su.Incr("MessagesSent")
	su.Incr("MessagesSent")
	su.Decr("MessagesSent")

	assert.Eventually(t, func() bool {
		return su.vars.Get("MessagesSent").String() == "1"
	}, time.Second, 10*time.Millisecond, "expected MessagesSent to settle at 1")
}
