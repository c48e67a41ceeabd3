package deployclient

import (
	"bytes"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/logging"
)

type ActionsFormatter struct{}

func SetupLogging(cfg Config) {
	log.SetOutput(os.Stderr)

	if cfg.Actions {
		log.SetFormatter(&ActionsFormatter{})
	} else {
		log.SetFormatter(logging.TextFormatter())
	}

	if cfg.Quiet {
		log.SetLevel(log.ErrorLevel)
	}
}

func (a *ActionsFormatter) Format(e *log.Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	switch e.Level {
	case log.ErrorLevel:
		buf.WriteString("::error::")
	case log.WarnLevel:
		buf.WriteString("::warning::")
	default:
		buf.WriteString("[")
		buf.WriteString(e.Time.Format(time.RFC3339Nano))
		buf.WriteString("] ")
	}
	buf.WriteString(e.Message)
	buf.WriteRune('\n')
	return buf.Bytes(), nil
}

func logDeploymentStatus(d deployment.Deployment) {
	fn := log.Infof
	if d.Status == deployment.StatusError {
		fn = log.Errorf
	}
	fn("%c Deployment %s: %s", d.Status.StatusEmoji(), d.DeployID, d.Status)
}
