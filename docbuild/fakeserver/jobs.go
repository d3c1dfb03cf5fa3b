package fakeserver

import (
	"fmt"
	"net/http"
)

// Job is a queued processing request.
type Job struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Status   string         `json:"status"`
	Callback string         `json:"callback,omitempty"`
	Params   map[string]any `json:"-"`
}

// Jobs returns every job accepted so far, oldest first.
func (s *Server) Jobs() []Job {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Job(nil), s.jobs...)
}

// Job accepts a processing request once every required parameter is present.
func (s *Server) Job(jobType string, required ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := requestFrom(r.Context())
		for _, name := range required {
			if isEmpty(req.Params[name]) {
				writeValidationError(w, fmt.Sprintf("%s is required", name))
				return
			}
		}

		callback, _ := req.Params["callback"].(string)
		job := Job{
			ID:       newID(),
			Type:     jobType,
			Status:   "queued",
			Callback: callback,
			Params:   req.Params,
		}

		s.lock.Lock()
		s.jobs = append(s.jobs, job)
		s.lock.Unlock()
		writeJSON(w, http.StatusAccepted, job)
	}
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	}
	return false
}
