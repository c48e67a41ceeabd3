// Package netlify talks to the Netlify deploy API.
package netlify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	ocodes "go.opentelemetry.io/otel/codes"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/metrics"
	"github.com/nais/sitedeploy/pkg/telemetry"
	"github.com/nais/sitedeploy/pkg/version"
)

const DefaultBaseURL = "https://api.netlify.com/api/v1"

var ErrIncompleteResponse = errors.New("response is missing site or deploy ID")

// Receipt is the provider's description of a deployment.
type Receipt struct {
	SiteID    string `json:"site_id"`
	ID        string `json:"id"`
	DeployURL string `json:"deploy_url"`
	State     string `json:"state"`
}

func (r *Receipt) Status() deployment.Status {
	return deployment.ParseStatus(r.State)
}

type DeployClient interface {
	Submit(ctx context.Context, token, siteName string, archive *archive.Archive) (*Receipt, error)
	QueryStatus(ctx context.Context, token, siteID, deployID string) (*Receipt, error)
}

var _ DeployClient = &Client{}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	bindings    binding.Store
	credentials credentials.Store
}

func New(baseURL string, httpClient *http.Client, bindings binding.Store, creds credentials.Store) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  httpClient,
		bindings:    bindings,
		credentials: creds,
	}
}

func (c *Client) do(req *http.Request, token string) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sitedeploy/"+version.Version())
	return c.httpClient.Do(req)
}

// Submit uploads an archive. Deployments go to the bound site if the project
// has a binding; otherwise siteName addresses the site, and the project is
// bound to the site the provider reports back.
//
// On success, the token is saved to the credential store.
func (c *Client) Submit(ctx context.Context, token, siteName string, a *archive.Archive) (*Receipt, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "Submit deployment")
	defer span.End()

	existing, err := c.bindings.Binding(ctx)
	if err != nil && !binding.IsErrNotFound(err) {
		span.SetStatus(ocodes.Error, err.Error())
		return nil, fmt.Errorf("read site binding: %w", err)
	}

	target := siteName
	if existing != nil {
		target = existing.SiteID
		if existing.SiteName != siteName {
			log.Warnf("Project is bound to site %q; ignoring requested site name %q", existing.SiteName, siteName)
		}
	}

	endpoint := fmt.Sprintf("%s/sites/%s/deploys", c.baseURL, url.PathEscape(target))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(a.Data))
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	req.Header.Set("Content-Type", archive.ContentType)

	metrics.ArchiveSize(a.Len())
	log.Debugf("Uploading %d bytes (%d files) to %s", a.Len(), len(a.Entries), endpoint)

	resp, err := c.do(req, token)
	if err != nil {
		metrics.ProviderRequest(metrics.OperationSubmit, 0)
		span.SetStatus(ocodes.Error, err.Error())
		return nil, &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	metrics.ProviderRequest(metrics.OperationSubmit, resp.StatusCode)

	if !success(resp) {
		err := &SubmissionError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(resp),
		}
		span.SetStatus(ocodes.Error, err.Error())
		return nil, err
	}

	receipt, err := decodeReceipt(resp.Body)
	if err != nil {
		span.SetStatus(ocodes.Error, err.Error())
		return nil, &SubmissionError{StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}

	telemetry.AddDeploymentSpanAttributes(span, deployment.Deployment{
		SiteID:   receipt.SiteID,
		DeployID: receipt.ID,
		Status:   receipt.Status(),
	})

	if existing == nil {
		newBinding := binding.SiteBinding{
			SiteID:   receipt.SiteID,
			SiteName: siteName,
		}
		err = c.bindings.SaveBinding(ctx, newBinding)
		if err != nil {
			log.Errorf("Deployment succeeded, but unable to save site binding: %s", err)
		} else {
			log.Infof("Project bound to site %q (%s)", newBinding.SiteName, newBinding.SiteID)
		}
	}

	err = c.credentials.SetToken(ctx, token)
	if err != nil {
		log.Errorf("Unable to save token: %s", err)
	}

	return receipt, nil
}

func (c *Client) QueryStatus(ctx context.Context, token, siteID, deployID string) (*Receipt, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "Get deployment status")
	defer span.End()

	endpoint := fmt.Sprintf("%s/sites/%s/deploys/%s", c.baseURL, url.PathEscape(siteID), url.PathEscape(deployID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &StatusQueryError{Err: err}
	}

	resp, err := c.do(req, token)
	if err != nil {
		metrics.ProviderRequest(metrics.OperationStatus, 0)
		span.SetStatus(ocodes.Error, err.Error())
		return nil, &StatusQueryError{Err: err}
	}
	defer resp.Body.Close()

	metrics.ProviderRequest(metrics.OperationStatus, resp.StatusCode)

	if !success(resp) {
		err := &StatusQueryError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    errorMessage(resp),
		}
		span.SetStatus(ocodes.Error, err.Error())
		return nil, err
	}

	receipt, err := decodeReceipt(resp.Body)
	if err != nil {
		span.SetStatus(ocodes.Error, err.Error())
		return nil, &StatusQueryError{StatusCode: resp.StatusCode, Status: resp.Status, Err: err}
	}

	telemetry.AddDeploymentSpanAttributes(span, deployment.Deployment{
		SiteID:   receipt.SiteID,
		DeployID: receipt.ID,
		Status:   receipt.Status(),
	})

	return receipt, nil
}

func success(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

func decodeReceipt(body io.Reader) (*Receipt, error) {
	receipt := &Receipt{}
	err := json.NewDecoder(body).Decode(receipt)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(receipt.SiteID) == 0 || len(receipt.ID) == 0 {
		return nil, ErrIncompleteResponse
	}
	return receipt, nil
}
