package notify

import (
	"os"

	"github.com/aymerick/raymond"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nais/sitedeploy/pkg/deployment"
)

const StepSummaryEnv = "GITHUB_STEP_SUMMARY"

const summaryTemplate = `## {{emoji}} Deployment {{status}}

| Site | Deploy |{{#if url}} URL |{{/if}}
|---|---|{{#if url}}---|{{/if}}
| ` + "`{{siteId}}`" + ` | ` + "`{{deployId}}`" + ` |{{#if url}} {{{url}}} |{{/if}}
{{#if error}}

> {{error}}
{{/if}}
`

// SummaryNotifier appends a markdown summary to a file, typically the
// GitHub Actions step summary.
type SummaryNotifier struct {
	fs   afero.Fs
	path string
}

var _ Notifier = &SummaryNotifier{}

func NewSummaryNotifier(fs afero.Fs, path string) *SummaryNotifier {
	return &SummaryNotifier{
		fs:   fs,
		path: path,
	}
}

// NewStepSummaryNotifier returns nil when not running in GitHub Actions.
func NewStepSummaryNotifier() *SummaryNotifier {
	path := os.Getenv(StepSummaryEnv)
	if len(path) == 0 {
		return nil
	}
	return NewSummaryNotifier(afero.NewOsFs(), path)
}

func (n *SummaryNotifier) Success(d deployment.Deployment) {
	n.write(d, nil)
}

func (n *SummaryNotifier) Failure(d deployment.Deployment, err error) {
	n.write(d, err)
}

func (n *SummaryNotifier) write(d deployment.Deployment, err error) {
	summary, renderErr := RenderSummary(d, err)
	if renderErr != nil {
		log.Errorf("Render deployment summary: %s", renderErr)
		return
	}

	file, openErr := n.fs.OpenFile(n.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if openErr != nil {
		log.Errorf("Open deployment summary: %s", openErr)
		return
	}
	defer file.Close()

	_, writeErr := file.WriteString(summary)
	if writeErr != nil {
		log.Errorf("Write deployment summary: %s", writeErr)
	}
}

func RenderSummary(d deployment.Deployment, err error) (string, error) {
	ctx := map[string]any{
		"emoji":    string(d.Status.StatusEmoji()),
		"status":   d.Status.String(),
		"siteId":   d.SiteID,
		"deployId": d.DeployID,
		"url":      d.URL,
	}
	if err != nil {
		ctx["error"] = err.Error()
	}
	return raymond.Render(summaryTemplate, ctx)
}
