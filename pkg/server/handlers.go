package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/seqgraph/pkg/errors"
	"github.com/matzehuels/seqgraph/pkg/observability"
	"github.com/matzehuels/seqgraph/pkg/variant"
)

// NodeResponse describes one node.
type NodeResponse struct {
	ID              uint32   `json:"id"`
	Sequence        string   `json:"sequence"`
	Length          uint32   `json:"length"`
	Reference       bool     `json:"reference"`
	ReferenceOffset *uint64  `json:"reference_offset,omitempty"`
	AlleleFrequency *float32 `json:"allele_frequency,omitempty"`
	Edges           []uint32 `json:"edges"`
}

// EdgesResponse lists a node's successors in edge order.
type EdgesResponse struct {
	ID    uint32   `json:"id"`
	Edges []uint32 `json:"edges"`
}

// PositionResponse locates a reference offset.
type PositionResponse struct {
	Chromosome   int    `json:"chromosome,omitempty"`
	Offset       uint64 `json:"offset"`
	Node         uint32 `json:"node"`
	OffsetInNode uint64 `json:"offset_in_node"`
}

// ResolveResponse is the result of variant resolution.
type ResolveResponse struct {
	Variant    string `json:"variant"`
	Kind       string `json:"kind"`
	Chromosome int    `json:"chromosome"`
	RefNode    uint32 `json:"ref_node"`
	AltNode    uint32 `json:"alt_node"`
}

// InfoResponse summarizes the graph.
type InfoResponse struct {
	Nodes             int      `json:"nodes"`
	Edges             int      `json:"edges"`
	ReferenceLength   uint64   `json:"reference_length"`
	Chromosomes       int      `json:"chromosomes"`
	ChromosomeNames   []string `json:"chromosome_names,omitempty"`
	AlleleFrequencies bool     `json:"allele_frequencies"`
	NumericSequences  bool     `json:"numeric_sequences"`
}

type errorBody struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	g := s.graph
	writeJSON(w, http.StatusOK, InfoResponse{
		Nodes:             g.NodeCount(),
		Edges:             g.EdgeCount(),
		ReferenceLength:   g.ReferenceLength(),
		Chromosomes:       g.ChromosomeCount(),
		ChromosomeNames:   s.chromosomes,
		AlleleFrequencies: g.HasAlleleFrequencies(),
		NumericSequences:  g.HasNumericSequences(),
	})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id, err := nodeParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	seq, err := s.graph.NodeSequence(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := NodeResponse{
		ID:        id,
		Sequence:  seq,
		Length:    uint32(len(seq)),
		Reference: s.graph.IsReference(id),
		Edges:     nonNil(s.graph.Edges(id)),
	}
	if resp.Reference {
		off, _ := s.graph.ReferenceOffsetOfNode(id)
		resp.ReferenceOffset = &off
	}
	if s.graph.HasAlleleFrequencies() {
		af, _ := s.graph.AlleleFrequency(id)
		resp.AlleleFrequency = &af
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	id, err := nodeParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.graph.NodeLength(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EdgesResponse{ID: id, Edges: nonNil(s.graph.Edges(id))})
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	offset, err := uintParam(chi.URLParam(r, "offset"), "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.locate(0, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChromosomeOffset(w http.ResponseWriter, r *http.Request) {
	chrom, err := s.chromosome(chi.URLParam(r, "chrom"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := uintParam(chi.URLParam(r, "offset"), "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.graph.NodeAtChromosomeOffset(chrom, offset); err != nil {
		s.writeError(w, r, err)
		return
	}
	start, _ := s.graph.ChromosomeOffset(chrom)
	resp, err := s.locate(chrom, start+offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp.Offset = offset
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pos, err := uintParam(q.Get("pos"), "pos")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	chromName := q.Get("chrom")
	if chromName == "" {
		chromName = "1"
	}
	chrom, err := s.chromosome(chromName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := variant.New(pos, q.Get("ref"), q.Get("alt"))
	if err != nil {
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", errors.UserMessage(err))
		}
		s.writeError(w, r, err)
		return
	}
	ref, alt, err := s.graph.ResolveVariantNodes(v, chrom)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{
		Variant:    v.String(),
		Kind:       v.Kind().String(),
		Chromosome: chrom,
		RefNode:    ref,
		AltNode:    alt,
	})
}

// locate resolves a global offset. chrom is only echoed back.
func (s *Server) locate(chrom int, offset uint64) (PositionResponse, error) {
	node, err := s.graph.NodeAtReferenceOffset(offset)
	if err != nil {
		return PositionResponse{}, err
	}
	within, err := s.graph.OffsetWithinNode(offset)
	if err != nil {
		return PositionResponse{}, err
	}
	return PositionResponse{Chromosome: chrom, Offset: offset, Node: node, OffsetInNode: within}, nil
}

// chromosome maps a name or 1-based index to an index.
func (s *Server) chromosome(param string) (int, error) {
	for i, name := range s.chromosomes {
		if name == param {
			return i + 1, nil
		}
	}
	n, err := strconv.Atoi(param)
	if err != nil || n < 1 || n > s.graph.ChromosomeCount() {
		return 0, errors.New(errors.ErrCodeChromosomeNotFound, "chromosome %q not in graph", param)
	}
	return n, nil
}

func nodeParam(r *http.Request) (uint32, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "node id %q is not a number", raw)
	}
	return uint32(id), nil
}

func uintParam(raw, name string) (uint64, error) {
	if raw == "" {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s is required", name)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s %q is not a non-negative integer", name, raw)
	}
	return v, nil
}

func nonNil(ids []uint32) []uint32 {
	if ids == nil {
		return []uint32{}
	}
	return ids
}

// statusOf maps error codes to HTTP statuses.
func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeVariantNotFound, errors.ErrCodeChromosomeNotFound, errors.ErrCodeNodeOutOfRange:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidChromosome:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeAmbiguousTopology:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusOf(code)
	if status >= http.StatusInternalServerError {
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		observability.HTTP().OnError(r.Context(), r.Method, route, err)
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Error: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
