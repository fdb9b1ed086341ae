package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
)

type TableEditor interface {
	ListTables(ctx context.Context) []services.TableSummary
	GetTableData(ctx context.Context, table string, page, pageSize int, search, sortBy, sortOrder string) (services.TableData, error)
	InsertRow(ctx context.Context, table string, values map[string]any) error
	UpdateRow(ctx context.Context, table, id string, values map[string]any) error
	DeleteRow(ctx context.Context, table, id string) error
}

type RawExecutor interface {
	ExecRaw(ctx context.Context, statement string, args []any) ([]map[string]any, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, data string) error
}

type TableHandler struct {
	editor TableEditor
	// raw is backed by the privileged handle; nil disables the statement route.
	raw   RawExecutor
	audit AuditRecorder
}

func NewTableHandler(editor TableEditor, raw RawExecutor, audit AuditRecorder) *TableHandler {
	return &TableHandler{editor: editor, raw: raw, audit: audit}
}

func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.editor.ListTables(r.Context()))
}

func (h *TableHandler) GetTableData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := h.editor.GetTableData(r.Context(),
		chi.URLParam(r, "table"),
		parsePositiveInt(q.Get("page"), 1),
		parsePositiveInt(q.Get("page_size"), 25),
		q.Get("search"),
		q.Get("sort_by"),
		q.Get("sort_order"),
	)
	if err != nil {
		h.respondEditorError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (h *TableHandler) InsertRow(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.editor.InsertRow(r.Context(), chi.URLParam(r, "table"), values); err != nil {
		h.respondEditorError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *TableHandler) UpdateRow(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.editor.UpdateRow(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "rowID"), values); err != nil {
		h.respondEditorError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TableHandler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.DeleteRow(r.Context(), chi.URLParam(r, "table"), chi.URLParam(r, "rowID")); err != nil {
		h.respondEditorError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rawStatementBody struct {
	Statement string `json:"statement"`
	Args      []any  `json:"args"`
}

// ExecRaw is the parameterized statement escape hatch for schema work the
// generic editor cannot express.
func (h *TableHandler) ExecRaw(w http.ResponseWriter, r *http.Request) {
	if h.raw == nil {
		respondError(w, http.StatusServiceUnavailable, "raw statements are not configured")
		return
	}
	var body rawStatementBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Statement == "" {
		respondError(w, http.StatusBadRequest, "statement is required")
		return
	}
	rows, err := h.raw.ExecRaw(r.Context(), body.Statement, body.Args)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.audit != nil {
		actorID, _ := middleware.UserIDFromContext(r.Context())
		data, _ := json.Marshal(map[string]string{"statement": body.Statement})
		_ = h.audit.Record(r.Context(), actorID, "exec_sql", "database", "", string(data))
	}
	respondJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *TableHandler) respondEditorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownTable):
		respondError(w, http.StatusNotFound, "unknown table")
	case errors.Is(err, services.ErrUnknownColumn):
		respondError(w, http.StatusBadRequest, "unknown column")
	case errors.Is(err, services.ErrRowNotFound):
		respondError(w, http.StatusNotFound, "row not found")
	default:
		respondError(w, http.StatusInternalServerError, "table operation failed")
	}
}
