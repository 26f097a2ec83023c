package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/banshee-data/medevac-irr/internal/agreement"
	"github.com/banshee-data/medevac-irr/internal/db"
	"github.com/banshee-data/medevac-irr/internal/httputil"
	"github.com/banshee-data/medevac-irr/internal/report"
	"github.com/banshee-data/medevac-irr/internal/version"
)

// questionView adds the descriptive kappa label to a question row.
type questionView struct {
	agreement.QuestionMetrics
	Strength agreement.Strength `json:"strength"`
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, version.Current())
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context())
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

// requireRun writes a 404 and returns false when id is not archived.
func (s *Server) requireRun(w http.ResponseWriter, r *http.Request) (*db.Run, bool) {
	run, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, "run not found")
		return nil, false
	}
	if err != nil {
		httputil.InternalServerError(w, err)
		return nil, false
	}
	return run, true
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if run, ok := s.requireRun(w, r); ok {
		httputil.WriteJSONOK(w, run)
	}
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	run, ok := s.requireRun(w, r)
	if !ok {
		return
	}
	metrics, err := s.store.QuestionMetrics(r.Context(), run.RunID)
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	out := make([]questionView, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, questionView{QuestionMetrics: m, Strength: agreement.Interpret(m.FleissKappa)})
	}
	httputil.WriteJSONOK(w, out)
}

func (s *Server) listClasses(w http.ResponseWriter, r *http.Request) {
	run, ok := s.requireRun(w, r)
	if !ok {
		return
	}
	metrics, err := s.store.ClassMetrics(r.Context(), run.RunID)
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	httputil.WriteJSONOK(w, metrics)
}

func (s *Server) listConfidence(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if by == "" {
		by = db.GroupDecision
	}
	if by != db.GroupDecision && by != db.GroupVignetteClass {
		httputil.BadRequest(w, "by must be 'decision' or 'vignette_class'")
		return
	}
	run, ok := s.requireRun(w, r)
	if !ok {
		return
	}
	summaries, err := s.store.ConfidenceSummaries(r.Context(), run.RunID, by)
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	httputil.WriteJSONOK(w, summaries)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	run, ok := s.requireRun(w, r)
	if !ok {
		return
	}
	records, err := s.store.LongRecords(r.Context(), run.RunID)
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	httputil.WriteJSONOK(w, records)
}

func (s *Server) showCharts(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.LoadResult(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, "run not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.RenderCharts(&buf, res, s.assetsHost); err != nil {
		httputil.InternalServerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
