package version_test

import (
	"testing"

	"github.com/nais/sitedeploy/pkg/version"
	"github.com/stretchr/testify/assert"
)

func TestBuildTimeDefault(t *testing.T) {
	ts, err := version.BuildTime()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), ts.Unix())
	assert.Equal(t, "unknown", version.Version())
}
