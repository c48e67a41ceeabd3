// Package api exposes a deployment session over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/session"
	"github.com/nais/sitedeploy/pkg/sitedeployd/middleware"
)

const maxRequestBody = 64 * 1024

// DeployStatusCodes lists every status code returned by the deploy endpoint.
var DeployStatusCodes = []int{
	http.StatusCreated,
	http.StatusBadRequest,
	http.StatusConflict,
	http.StatusInternalServerError,
	http.StatusBadGateway,
}

type Handler struct {
	Session Session
}

type DeployRequest struct {
	Token    string `json:"token"`
	SiteName string `json:"site_name"`
}

type Response struct {
	Message string `json:"message,omitempty"`
}

func (r *Response) render(w http.ResponseWriter, statusCode int) {
	renderJSON(w, statusCode, r)
}

func renderJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) Deployment(w http.ResponseWriter, _ *http.Request) {
	d, ok := h.Session.DeploymentState()
	if !ok {
		(&Response{Message: "no deployment"}).render(w, http.StatusNotFound)
		return
	}
	renderJSON(w, http.StatusOK, d)
}

func (h *Handler) Binding(w http.ResponseWriter, r *http.Request) {
	b, err := h.Session.Binding(r.Context())
	switch {
	case err == nil:
		renderJSON(w, http.StatusOK, b)
	case binding.IsErrNotFound(err):
		(&Response{Message: err.Error()}).render(w, http.StatusNotFound)
	default:
		log.WithFields(middleware.RequestLogFields(r)).Errorf("Read site binding: %s", err)
		(&Response{Message: "unable to read site binding"}).render(w, http.StatusInternalServerError)
	}
}

func (h *Handler) Deploy(w http.ResponseWriter, r *http.Request) {
	logger := log.WithFields(middleware.RequestLogFields(r))

	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		(&Response{Message: fmt.Sprintf("unable to read request body: %s", err)}).render(w, http.StatusBadRequest)
		return
	}

	request := &DeployRequest{}
	err = json.Unmarshal(data, request)
	if err != nil {
		(&Response{Message: fmt.Sprintf("unable to parse request body: %s", err)}).render(w, http.StatusBadRequest)
		return
	}

	receipt, err := h.Session.Deploy(r.Context(), request.Token, request.SiteName)
	if err != nil {
		statusCode := deployStatusCode(err)
		if statusCode >= http.StatusInternalServerError {
			logger.Errorf("Deployment failed: %s", err)
		} else {
			logger.Warnf("Deployment rejected: %s", err)
		}
		(&Response{Message: err.Error()}).render(w, statusCode)
		return
	}

	logger.WithFields(log.Fields{
		"site_id":   receipt.SiteID,
		"deploy_id": receipt.ID,
	}).Infof("Deployment submitted")

	renderJSON(w, http.StatusCreated, receipt)
}

func deployStatusCode(err error) int {
	var (
		packagingError  = &archive.PackagingError{}
		submissionError = &netlify.SubmissionError{}
	)

	switch {
	case session.IsConfigurationError(err):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &submissionError):
		return http.StatusBadGateway
	case errors.As(err, &packagingError):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Events streams deployment state as server-sent events, starting with the
// current state if there is one.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		(&Response{Message: "streaming not supported"}).render(w, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates := make(chan deployment.Deployment, 16)
	go h.Session.Subscribe(r.Context(), updates)

	if d, ok := h.Session.DeploymentState(); ok {
		if writeEvent(w, d) != nil {
			return
		}
		flusher.Flush()
	}

	for d := range updates {
		if writeEvent(w, d) != nil {
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w io.Writer, d deployment.Deployment) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: deployment\ndata: %s\n\n", data)
	return err
}
