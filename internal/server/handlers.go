package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/msttree/pkg/config"
	"github.com/matzehuels/msttree/pkg/errors"
	mstio "github.com/matzehuels/msttree/pkg/io"
	"github.com/matzehuels/msttree/pkg/pipeline"
	"github.com/matzehuels/msttree/pkg/store"
	"github.com/matzehuels/msttree/pkg/tree/collapse"
)

// layoutRequest is the body of POST /api/v1/layouts and /api/v1/collapse.
type layoutRequest struct {
	Input     mstio.Input      `json:"input"`
	Threshold *float64         `json:"threshold,omitempty"`
	Settings  *config.Settings `json:"settings,omitempty"`
	Formats   []string         `json:"formats,omitempty"`
}

// threshold returns the requested threshold, falling back to the
// node_collapsed_value of the given or saved settings.
func (req *layoutRequest) threshold() float64 {
	switch {
	case req.Threshold != nil:
		return *req.Threshold
	case req.Settings != nil:
		return req.Settings.NodeCollapsedValue
	case req.Input.Layout != nil:
		return req.Input.Layout.NodesLinks.NodeCollapsedValue
	}
	return 0
}

type statsBody struct {
	Nodes      int   `json:"nodes"`
	Visible    int   `json:"visible"`
	Merged     int   `json:"merged"`
	Restored   bool  `json:"restored"`
	DurationMS int64 `json:"duration_ms"`
}

type layoutResponse struct {
	*store.Document
	Stats     statsBody         `json:"stats"`
	Cached    bool              `json:"cached"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

type collapseResponse struct {
	Threshold    float64             `json:"threshold"`
	Merged       int                 `json:"merged"`
	Nodes        []string            `json:"nodes"`
	GroupedNodes map[string][]string `json:"grouped_nodes"`
	// Members lists the metadata record IDs behind each visible entity.
	Members map[string][]string `json:"members"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*layoutRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	return &req, nil
}

func (s *Server) createLayout(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), &req.Input, pipeline.Options{
		Threshold: req.threshold(),
		Settings:  req.Settings,
		Formats:   req.Formats,
		Logger:    s.logger,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	doc := store.NewDocument(res.Layout.NodesLinks.NodeCollapsedValue, res.Layout)
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "save layout"))
		return
	}

	st := res.Stats
	w.Header().Set("Location", "/api/v1/layouts/"+doc.ID)
	s.respondJSON(w, http.StatusCreated, layoutResponse{
		Document: doc,
		Stats: statsBody{
			Nodes:      st.Nodes,
			Visible:    st.Visible,
			Merged:     st.Merged,
			Restored:   st.Restored,
			DurationMS: (st.BuildTime + st.CollapseTime + st.LayoutTime + st.RenderTime).Milliseconds(),
		},
		Cached:    res.CacheHit,
		Artifacts: res.Artifacts,
	})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) collapse(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	settings := config.Default()
	if req.Settings != nil {
		settings = *req.Settings
	}
	if err := settings.Validate(); err != nil {
		s.respondError(w, r, err)
		return
	}

	t, err := s.runner.Build(r.Context(), &req.Input)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	threshold := req.threshold()
	c := collapse.New(t, settings.SizingPolicy(req.Input.Records()))
	res, err := s.runner.Collapse(r.Context(), c, threshold, nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	members := make(map[string][]string, len(res.Groups))
	for _, n := range res.Tree.Nodes() {
		if !n.Composite {
			members[n.ID] = req.Input.ExpandIDs(c.IDsFor(n.ID))
		}
	}
	s.respondJSON(w, http.StatusOK, collapseResponse{
		Threshold:    threshold,
		Merged:       res.Merged,
		Nodes:        res.Tree.IDs(),
		GroupedNodes: res.Groups,
		Members:      members,
	})
}
