// Package netlifytest provides a scripted fake of the Netlify deploy API.
package netlifytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi"

	"github.com/nais/sitedeploy/pkg/netlify"
)

type Request struct {
	Method        string
	Path          string
	Target        string
	DeployID      string
	Authorization string
	ContentType   string
	Body          []byte
}

// Response is either a receipt served with StatusCode (default 200),
// or a non-success StatusCode with an error message.
type Response struct {
	StatusCode int
	Receipt    *netlify.Receipt
	Message    string
}

type Server struct {
	*httptest.Server

	lock            sync.Mutex
	requests        []Request
	submitResponses []Response
	statusResponses []Response
	lastStatus      *Response
}

func NewServer() *Server {
	s := &Server{}

	router := chi.NewRouter()
	router.Post("/sites/{target}/deploys", s.submit)
	router.Get("/sites/{target}/deploys/{deployID}", s.status)

	s.Server = httptest.NewServer(router)
	return s
}

func (s *Server) QueueSubmit(responses ...Response) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.submitResponses = append(s.submitResponses, responses...)
}

// QueueStatus adds status responses. When the queue runs dry, the last
// status response is repeated.
func (s *Server) QueueStatus(responses ...Response) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.statusResponses = append(s.statusResponses, responses...)
}

func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	requests := make([]Request, len(s.requests))
	copy(requests, s.requests)
	return requests
}

func (s *Server) count(method string) int {
	n := 0
	for _, req := range s.Requests() {
		if req.Method == method {
			n++
		}
	}
	return n
}

func (s *Server) Submissions() int {
	return s.count(http.MethodPost)
}

func (s *Server) StatusQueries() int {
	return s.count(http.MethodGet)
}

func (s *Server) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.lock.Lock()
	defer s.lock.Unlock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Target:        chi.URLParam(r, "target"),
		DeployID:      chi.URLParam(r, "deployID"),
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.lock.Lock()
	var response *Response
	if len(s.submitResponses) > 0 {
		response = &s.submitResponses[0]
		s.submitResponses = s.submitResponses[1:]
	}
	s.lock.Unlock()

	write(w, response)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	s.lock.Lock()
	if len(s.statusResponses) > 0 {
		s.lastStatus = &s.statusResponses[0]
		s.statusResponses = s.statusResponses[1:]
	}
	response := s.lastStatus
	s.lock.Unlock()

	write(w, response)
}

func write(w http.ResponseWriter, response *Response) {
	w.Header().Set("Content-Type", "application/json")

	if response == nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 500, "message": "no response scripted"})
		return
	}

	code := response.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	w.WriteHeader(code)

	if response.Receipt != nil {
		_ = json.NewEncoder(w).Encode(response.Receipt)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": response.Message})
}

func Ok(siteID, deployID, url, state string) Response {
	return Response{
		Receipt: &netlify.Receipt{
			SiteID:    siteID,
			ID:        deployID,
			DeployURL: url,
			State:     state,
		},
	}
}

func Fail(statusCode int, message string) Response {
	return Response{
		StatusCode: statusCode,
		Message:    message,
	}
}
