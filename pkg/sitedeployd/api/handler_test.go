package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/netlify/netlifytest"
	"github.com/nais/sitedeploy/pkg/session"
	"github.com/nais/sitedeploy/pkg/sitedeployd/api"
)

type fixture struct {
	provider *netlifytest.Server
	bindings *binding.MemoryStore
	session  *session.Session
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		provider: netlifytest.NewServer(),
		bindings: binding.NewMemoryStore(),
	}
	f.session = session.New(session.Config{
		Files:        archive.StaticProvider{"index.html": "<h1>hi</h1>"},
		Client:       netlify.New(f.provider.URL, nil, f.bindings, credentials.NewMemoryStore()),
		Bindings:     f.bindings,
		PollInterval: 10 * time.Millisecond,
	})
	f.server = httptest.NewServer(api.New(api.Config{
		Session:     f.session,
		MetricsPath: "/metrics",
		Registerer:  prometheus.NewRegistry(),
	}))
	t.Cleanup(func() {
		f.server.Close()
		f.session.Close()
		f.provider.Close()
	})
	return f
}

func (f *fixture) deploy(t *testing.T, body string) *http.Response {
	resp, err := http.Post(f.server.URL+"/api/v1/deploy", "application/json", strings.NewReader(body))
	assert.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target any) {
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestDeploy(t *testing.T) {
	f := newFixture(t)
	f.provider.QueueSubmit(netlifytest.Ok("s1", "d1", "https://s1.netlify.app", "building"))
	f.provider.QueueStatus(netlifytest.Ok("s1", "d1", "https://s1.netlify.app", "building"))

	resp := f.deploy(t, `{"token":"tok","site_name":"my-site"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	receipt := &netlify.Receipt{}
	decode(t, resp, receipt)
	assert.Equal(t, "s1", receipt.SiteID)
	assert.Equal(t, "d1", receipt.ID)

	resp, err := http.Get(f.server.URL + "/api/v1/deployment")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	d := deployment.Deployment{}
	decode(t, resp, &d)
	assert.Equal(t, "d1", d.DeployID)
	assert.Equal(t, deployment.StatusBuilding, d.Status)

	resp, err = http.Get(f.server.URL + "/api/v1/binding")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	b := binding.SiteBinding{}
	decode(t, resp, &b)
	assert.Equal(t, binding.SiteBinding{SiteID: "s1", SiteName: "my-site"}, b)
}

func TestDeployErrors(t *testing.T) {
	f := newFixture(t)
	f.provider.QueueSubmit(netlifytest.Fail(http.StatusUnauthorized, "Access Denied"))

	for _, tc := range []struct {
		name       string
		body       string
		statusCode int
	}{
		{"malformed body", `{"token":`, http.StatusBadRequest},
		{"missing token", `{"site_name":"my-site"}`, http.StatusBadRequest},
		{"missing site name", `{"token":"tok"}`, http.StatusBadRequest},
		{"provider rejects", `{"token":"tok","site_name":"my-site"}`, http.StatusBadGateway},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp := f.deploy(t, tc.body)
			assert.Equal(t, tc.statusCode, resp.StatusCode)
			response := &api.Response{}
			decode(t, resp, response)
			assert.NotEmpty(t, response.Message)
		})
	}

	assert.Equal(t, 1, f.provider.Submissions())
}

func TestDeployRequiresJSON(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Post(f.server.URL+"/api/v1/deploy", "text/plain", strings.NewReader("hello"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestNothingDeployedYet(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/v1/deployment", "/api/v1/binding", "/api/v1/binding/"} {
		resp, err := http.Get(f.server.URL + path)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/metrics")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	f.provider.QueueSubmit(netlifytest.Ok("s1", "d1", "https://s1.netlify.app", "building"))
	f.provider.QueueStatus(netlifytest.Ok("s1", "d1", "https://s1.netlify.app", "building"))

	_, err := f.session.Deploy(context.Background(), "tok", "my-site")
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/api/v1/deployment/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if !assert.NoError(t, err) {
		return
	}
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, err := reader.ReadString('\n')
	assert.NoError(t, err)
	assert.Equal(t, "event: deployment\n", event)

	data, err := reader.ReadBytes('\n')
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("data: ")))

	d := deployment.Deployment{}
	assert.NoError(t, json.Unmarshal(bytes.TrimPrefix(data, []byte("data: ")), &d))
	assert.Equal(t, "d1", d.DeployID)
	assert.Equal(t, deployment.StatusBuilding, d.Status)
}
