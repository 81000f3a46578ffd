package storage

import (
	"fmt"
	"net/http"

	"github.com/citycal/citycal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type migrationResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Migrated int    `json:"migrated"`
}

type MigratorHandler struct {
	migrator *Migrator
}

func NewMigratorHandler(migrator *Migrator) *MigratorHandler {
	return &MigratorHandler{migrator: migrator}
}

func (h *MigratorHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	migrated, err := h.migrator.Migrate(r.Context())
	if err != nil {
		log.Errorf("Migration failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to migrate events", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, migrationResponse{
		Success:  true,
		Message:  fmt.Sprintf("Migrated %d events to %s", migrated, h.migrator.remote.Backend()),
		Migrated: migrated,
	})
}
