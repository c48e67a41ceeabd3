package logging_test

import (
	"testing"

	"github.com/nais/sitedeploy/pkg/logging"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	assert.NoError(t, logging.Setup("debug", "json"))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.Equal(t, logging.JSONFormatter(), log.StandardLogger().Formatter)

	assert.NoError(t, logging.Setup("warning", "text"))
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.Equal(t, logging.TextFormatter(), log.StandardLogger().Formatter)
}

func TestSetupErrors(t *testing.T) {
	assert.Error(t, logging.Setup("info", "xml"))
	assert.Error(t, logging.Setup("loud", "text"))
}
