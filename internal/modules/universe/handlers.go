package universe

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/utils"
)

// Handlers exposes the sector universe over HTTP.
type Handlers struct {
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger
}

// NewHandlers creates a new universe handlers instance
func NewHandlers(repo *Repository, eventManager *events.Manager, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:   repo,
		events: eventManager,
		log:    log.With().Str("handler", "universe").Logger(),
	}
}

// RegisterRoutes mounts the universe endpoints under /api.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/universe/sectors", func(r chi.Router) {
		r.Get("/", h.HandleGetSectors)
		r.Get("/{name}", h.HandleGetSector)
		r.Put("/{name}", h.HandlePutSector)
		r.Delete("/{name}", h.HandleDeleteSector)
	})
}

// HandleGetSectors lists the universe
// GET /api/universe/sectors
func (h *Handlers) HandleGetSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.repo.GetSectors()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get sectors")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to get sectors", h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, sectors, h.log)
}

// HandleGetSector returns one sector
// GET /api/universe/sectors/{name}
func (h *Handlers) HandleGetSector(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))

	sector, err := h.repo.GetSector(name)
	if err != nil {
		h.log.Error().Err(err).Str("sector", name).Msg("Failed to get sector")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to get sector", h.log)
		return
	}
	if sector == nil {
		utils.WriteError(w, r, http.StatusNotFound, "Sector not found", h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, sector, h.log)
}

type putSectorRequest struct {
	Symbols []string `json:"symbols"`
}

// HandlePutSector creates or replaces a sector
// PUT /api/universe/sectors/{name}  {"symbols": ["KO", "PEP"]}
func (h *Handlers) HandlePutSector(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))

	var req putSectorRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	sector, err := h.repo.ReplaceSector(name, req.Symbols)
	if errors.Is(err, ErrInvalidSector) {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("sector", name).Msg("Failed to save sector")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to save sector", h.log)
		return
	}

	h.emit(map[string]interface{}{"sector": sector.Name, "symbols": sector.Symbols, "action": "replaced"})
	utils.WriteResponse(w, r, http.StatusOK, sector, h.log)
}

// HandleDeleteSector removes a sector
// DELETE /api/universe/sectors/{name}
func (h *Handlers) HandleDeleteSector(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))

	deleted, err := h.repo.DeleteSector(name)
	if err != nil {
		h.log.Error().Err(err).Str("sector", name).Msg("Failed to delete sector")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to delete sector", h.log)
		return
	}
	if !deleted {
		utils.WriteError(w, r, http.StatusNotFound, "Sector not found", h.log)
		return
	}

	h.emit(map[string]interface{}{"sector": name, "action": "deleted"})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) emit(data map[string]interface{}) {
	if h.events != nil {
		h.events.Emit(events.SectorUpdated, "universe", data)
	}
}
