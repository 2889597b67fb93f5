package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ongchi/insitu-logger/pkg/services"
)

// CatalogHandler serves the read-only reference catalogs.
type CatalogHandler struct {
	catalogService services.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/options", h.Options)
	mux.HandleFunc("GET /api/wells", listCatalog(h, "wells", h.catalogService.ListWells))
	mux.HandleFunc("GET /api/pumps", listCatalog(h, "pumps", h.catalogService.ListPumps))
	mux.HandleFunc("GET /api/sample_types", listCatalog(h, "sample types", h.catalogService.ListSampleTypes))
	mux.HandleFunc("GET /api/people", listCatalog(h, "people", h.catalogService.ListPeople))
}

// Options handles GET /api/options
func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.catalogService.Options(r.Context())
	if err != nil {
		writeError(w, h.logger, "Failed to load options", err)
		return
	}

	writeData(w, h.logger, http.StatusOK, opts)
}

func listCatalog[T any](h *CatalogHandler, name string, list func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := list(r.Context())
		if err != nil {
			writeError(w, h.logger, "Failed to list "+name, err)
			return
		}
		if items == nil {
			items = []T{}
		}

		writeData(w, h.logger, http.StatusOK, items)
	}
}
