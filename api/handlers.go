package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Sureshraksha7/next-webi-webmap/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service is the set of logical operations the HTTP layer exposes. It is
// implemented by webmap.Webmap.
type Service interface {
	CreateNode(name string, description string, status string) (*model.Node, error)
	UpdateNode(id uuid.UUID, name string, description string, status string) (*model.Node, error)
	DeleteNode(id uuid.UUID) error
	SearchNodes(term string) ([]*model.Node, error)
	SearchUnrelatedNodes(contentID uuid.UUID, term string) ([]*model.Node, error)
	CreateRelationship(parentID uuid.UUID, childID uuid.UUID) (bool, error)
	DeleteRelationship(parentID uuid.UUID, childID uuid.UUID) error
	RecordClick(sourceID uuid.UUID, targetID uuid.UUID) (*model.ClickCounter, error)
	InboundStats(contentID uuid.UUID) (*model.DirectedStats, error)
	OutboundStats(contentID uuid.UUID) (*model.DirectedStats, error)
	AllStats() ([]*model.NodeClickTotals, error)
	Tree() ([]*model.TreeNode, error)
	Reset() error
}

// Handler handles all webmap HTTP requests
type Handler struct {
	service  Service
	log      *slog.Logger
	validate *validator.Validate
}

// NewHandler creates a new handler
func NewHandler(service Service, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		log:      log,
		validate: validator.New(),
	}
}

// NodeRequest is the request body for creating or updating a node
type NodeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// RelationRequest is the request body for creating or deleting a relationship
type RelationRequest struct {
	ParentID string `json:"parentId" validate:"required,uuid"`
	ChildID  string `json:"childId" validate:"required,uuid"`
}

// ClickRequest is the request body for recording a link click
type ClickRequest struct {
	SourceID string `json:"sourceId" validate:"required,uuid"`
	TargetID string `json:"targetId" validate:"required,uuid"`
}

// CreateNode handles POST /node/create
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req NodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	node, err := h.service.CreateNode(req.Name, req.Description, req.Status)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	h.respondJSON(w, http.StatusOK, node)
}

// UpdateNode handles PUT /node/update/{contentID}
func (h *Handler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	contentID, ok := h.pathID(w, r, "contentID")
	if !ok {
		return
	}

	var req NodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	node, err := h.service.UpdateNode(contentID, req.Name, req.Description, req.Status)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	h.respondJSON(w, http.StatusOK, node)
}

// DeleteNode handles DELETE /node/delete/{contentID}
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	contentID, ok := h.pathID(w, r, "contentID")
	if !ok {
		return
	}

	if err := h.service.DeleteNode(contentID); err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	h.respondMessage(w, http.StatusOK, "Node deleted")
}

// SearchNodes handles GET /node/search/{term}. Underscores in the term stand
// for spaces. No match is a non-error 404 signal, not an empty list.
func (h *Handler) SearchNodes(w http.ResponseWriter, r *http.Request) {
	term := searchTerm(r)

	nodes, err := h.service.SearchNodes(term)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}
	if len(nodes) == 0 {
		h.respondMessage(w, http.StatusNotFound, "No match")
		return
	}

	h.respondJSON(w, http.StatusOK, nodes)
}

// SearchUnrelatedNodes handles GET /node/search_unrelated/{contentID}/{term},
// excluding the node itself and its existing children from the result. An
// empty result distinguishes "No match" (nothing matched at all) from
// "No unrelated match" (matches existed but all were already children).
func (h *Handler) SearchUnrelatedNodes(w http.ResponseWriter, r *http.Request) {
	contentID, ok := h.pathID(w, r, "contentID")
	if !ok {
		return
	}
	term := searchTerm(r)

	nodes, err := h.service.SearchUnrelatedNodes(contentID, term)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}
	if len(nodes) == 0 {
		matches, err := h.service.SearchNodes(term)
		if err == nil {
			for _, node := range matches {
				if node.ContentID != contentID {
					h.respondMessage(w, http.StatusNotFound, "No unrelated match")
					return
				}
			}
		}
		h.respondMessage(w, http.StatusNotFound, "No match")
		return
	}

	h.respondJSON(w, http.StatusOK, nodes)
}

// CreateRelation handles POST /relation/create. Creating an existing pair is
// an idempotent success with a distinguishing message.
func (h *Handler) CreateRelation(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePair(w, r)
	if !ok {
		return
	}
	parentID, childID, ok := h.parsePair(w, req.ParentID, req.ChildID)
	if !ok {
		return
	}
	if parentID == childID {
		h.respondError(w, http.StatusBadRequest, "parentId and childId must differ")
		return
	}

	created, err := h.service.CreateRelationship(parentID, childID)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}
	if !created {
		h.respondMessage(w, http.StatusOK, "Relationship exists")
		return
	}

	h.respondMessage(w, http.StatusOK, "Relationship created")
}

// DeleteRelation handles DELETE /relation/delete
func (h *Handler) DeleteRelation(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePair(w, r)
	if !ok {
		return
	}
	parentID, childID, ok := h.parsePair(w, req.ParentID, req.ChildID)
	if !ok {
		return
	}

	if err := h.service.DeleteRelationship(parentID, childID); err != nil {
		h.respondServiceError(w, err, "Relationship not found")
		return
	}

	h.respondMessage(w, http.StatusOK, "Relationship deleted")
}

// RecordClick handles POST /link/click
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "sourceId and targetId required")
		return
	}
	sourceID, targetID, ok := h.parsePair(w, req.SourceID, req.TargetID)
	if !ok {
		return
	}

	counter, err := h.service.RecordClick(sourceID, targetID)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Click recorded",
		"count":   counter.Count,
	})
}

// InboundStatsResponse mirrors the wire shape of the inbound stats view
type InboundStatsResponse struct {
	Total       int                 `json:"total_inbound_count"`
	Connections []InboundConnection `json:"inbound_connections"`
}

// InboundConnection is one itemized inbound entry
type InboundConnection struct {
	SourceID uuid.UUID `json:"sourceId"`
	Count    int       `json:"count"`
}

// OutboundStatsResponse mirrors the wire shape of the outbound stats view
type OutboundStatsResponse struct {
	Total       int                  `json:"total_outbound_count"`
	Connections []OutboundConnection `json:"outbound_connections"`
}

// OutboundConnection is one itemized outbound entry
type OutboundConnection struct {
	TargetID uuid.UUID `json:"targetId"`
	Count    int       `json:"count"`
}

// InboundStats handles GET /inbound_stats/{contentID}
func (h *Handler) InboundStats(w http.ResponseWriter, r *http.Request) {
	contentID, ok := h.pathID(w, r, "contentID")
	if !ok {
		return
	}

	stats, err := h.service.InboundStats(contentID)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	resp := InboundStatsResponse{
		Total:       stats.Total,
		Connections: make([]InboundConnection, 0, len(stats.Connections)),
	}
	for _, connection := range stats.Connections {
		resp.Connections = append(resp.Connections, InboundConnection{SourceID: connection.NodeID, Count: connection.Count})
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// OutboundStats handles GET /outbound_stats/{contentID}
func (h *Handler) OutboundStats(w http.ResponseWriter, r *http.Request) {
	contentID, ok := h.pathID(w, r, "contentID")
	if !ok {
		return
	}

	stats, err := h.service.OutboundStats(contentID)
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	resp := OutboundStatsResponse{
		Total:       stats.Total,
		Connections: make([]OutboundConnection, 0, len(stats.Connections)),
	}
	for _, connection := range stats.Connections {
		resp.Connections = append(resp.Connections, OutboundConnection{TargetID: connection.NodeID, Count: connection.Count})
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// AllStats handles GET /all_stats
func (h *Handler) AllStats(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.AllStats()
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}
	if totals == nil {
		totals = []*model.NodeClickTotals{}
	}

	h.respondJSON(w, http.StatusOK, totals)
}

// Tree handles GET /tree
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	treeNodes, err := h.service.Tree()
	if err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	h.respondJSON(w, http.StatusOK, treeNodes)
}

// Reset handles DELETE /reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(); err != nil {
		h.respondServiceError(w, err, "Node not found")
		return
	}

	h.respondMessage(w, http.StatusOK, "Reset done")
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func searchTerm(r *http.Request) string {
	return strings.ReplaceAll(chi.URLParam(r, "term"), "_", " ")
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodePair(w http.ResponseWriter, r *http.Request) (RelationRequest, bool) {
	var req RelationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "parentId and childId required")
		return req, false
	}
	return req, true
}

func (h *Handler) parsePair(w http.ResponseWriter, first string, second string) (uuid.UUID, uuid.UUID, bool) {
	firstID, err := uuid.Parse(first)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	secondID, err := uuid.Parse(second)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	return firstID, secondID, true
}

// respondServiceError maps a service error onto the HTTP taxonomy. Internal
// detail goes to the log only; the caller sees a generic body.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		h.respondError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, model.ErrNotFound):
		h.respondError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, model.ErrAlreadyExists):
		h.respondMessage(w, http.StatusOK, "Already exists")
	case errors.Is(err, model.ErrUnavailable):
		h.log.Error("Storage unavailable", slog.String("error", err.Error()))
		h.respondError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		h.log.Error("Internal error", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Encoding response", slog.String("error", err.Error()))
	}
}

func (h *Handler) respondMessage(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"message": message})
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
