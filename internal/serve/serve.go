// Package serve exposes a trained softmax-regression model over HTTP.
//
// POST /infer takes one sample as a JSON object keyed by feature name and
// answers with the class probabilities. POST /train is routed but not
// implemented. GET /healthz reports liveness.
package serve

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/model"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// MaxBodyBytes caps the size of an /infer request body.
const MaxBodyBytes = 4096

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// InferResponse is the body of a successful /infer call.
type InferResponse struct {
	ID            string             `json:"id"`
	Label         string             `json:"label"`
	Probabilities map[string]float32 `json:"probabilities"`
}

type errorResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Server answers inference requests. The model is shared and guarded by
// a mutex, so requests are served one at a time.
type Server struct {
	mu       sync.Mutex
	model    *model.SoftmaxRegression
	x, p     *tensor.Matrix
	features []string
	classes  []string
	logger   *log.Logger
}

// New returns a Server over m. features names the input columns in model
// order and classes names the outputs. The request and result buffers
// are allocated from a.
func New(a *arena.Arena, m *model.SoftmaxRegression, features, classes []string, logger *log.Logger) (*Server, error) {
	if m == nil {
		return nil, status.Invalid("serve", "model is nil")
	}
	cfg := m.Config()
	if len(features) != cfg.D {
		return nil, status.Invalid("serve", "%d feature names for %d inputs", len(features), cfg.D)
	}
	if len(classes) != cfg.C {
		return nil, status.Invalid("serve", "%d class names for %d outputs", len(classes), cfg.C)
	}
	x, err := tensor.New(a, cfg.N, cfg.D)
	if err != nil {
		return nil, fmt.Errorf("serve: input buffer: %w", err)
	}
	p, err := tensor.New(a, cfg.N, cfg.C)
	if err != nil {
		return nil, fmt.Errorf("serve: output buffer: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		model:    m,
		x:        x,
		p:        p,
		features: features,
		classes:  classes,
		logger:   logger,
	}, nil
}

// Handler returns the HTTP routes of s.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /infer", s.handleInfer)
	mux.HandleFunc("POST /train", s.handleTrain)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)

	var req map[string]float64
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, id, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		s.fail(w, id, http.StatusBadRequest, "invalid json")
		return
	}

	sample := make([]float32, len(s.features))
	for i, name := range s.features {
		v, ok := req[name]
		if !ok {
			s.fail(w, id, http.StatusBadRequest, fmt.Sprintf("missing feature %q", name))
			return
		}
		f := float32(v)
		if math32.IsInf(f, 0) {
			s.fail(w, id, http.StatusBadRequest, fmt.Sprintf("feature %q out of float32 range", name))
			return
		}
		sample[i] = f
	}

	resp, err := s.infer(sample)
	if err != nil {
		s.logger.Printf("infer id=%s: %v", id, err)
		s.fail(w, id, http.StatusInternalServerError, "inference failed")
		return
	}
	resp.ID = id
	s.logger.Printf("infer id=%s label=%s p=%.3f", id, resp.Label, resp.Probabilities[resp.Label])

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Printf("infer id=%s: write response: %v", id, err)
	}
}

// infer runs one sample through row 0 of the model batch. The other rows
// are zero; softmax is row-wise so they do not affect the result.
func (s *Server) infer(sample []float32) (InferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.x.FillScalar(0); err != nil {
		return InferResponse{}, err
	}
	if err := s.x.FillRow(0, sample); err != nil {
		return InferResponse{}, err
	}
	if err := s.model.Infer(s.x, s.p); err != nil {
		return InferResponse{}, err
	}
	row, err := s.p.Row(0)
	if err != nil {
		return InferResponse{}, err
	}
	for i, v := range row {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return InferResponse{}, fmt.Errorf("serve: probability %d is %v: %w", i, v, status.ErrInvalidArgument)
		}
	}
	best, err := s.p.ArgMaxRow(0)
	if err != nil {
		return InferResponse{}, err
	}

	probs := make(map[string]float32, len(s.classes))
	for i, name := range s.classes {
		probs[name] = row[i]
	}
	return InferResponse{Label: s.classes[best], Probabilities: probs}, nil
}

func (s *Server) handleTrain(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)
	s.fail(w, id, http.StatusNotImplemented, status.ErrUnimplemented.Error())
}

func (s *Server) fail(w http.ResponseWriter, id string, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponse{ID: id, Error: msg}); err != nil {
		s.logger.Printf("request id=%s: write error response: %v", id, err)
	}
}
