// Copyright (C) 2025 Mukon Labs <dev@mukon.chat>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mukonchat/graph/backend/circuit"
	"github.com/mukonchat/graph/backend/middleware"
	"github.com/mukonchat/graph/backend/models"
)

// CircuitHandler dispatches oblivious membership queries to the
// computation runtime. The server never sees list, query, or result in
// the clear: inputs arrive as shares and the output is sealed to the
// caller-supplied owner key.
type CircuitHandler struct {
	runtime circuit.Runtime
	log     *logrus.Logger
}

func NewCircuitHandler(runtime circuit.Runtime, log *logrus.Logger) *CircuitHandler {
	if log == nil {
		log = logrus.New()
	}
	return &CircuitHandler{runtime: runtime, log: log}
}

func (h *CircuitHandler) Contains(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		List     circuit.EncryptedList  `json:"list"`
		Query    circuit.EncryptedQuery `json:"query"`
		OwnerKey models.Key32           `json:"owner_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ownerKey := [32]byte(req.OwnerKey)
	sealed, err := h.runtime.IsAcceptedContact(r.Context(), req.List, req.Query, &ownerKey)
	if err != nil {
		h.log.WithError(err).WithField("caller", caller).Warn("membership evaluation failed")
		http.Error(w, "Evaluation failed", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, sealed)
}

func (h *CircuitHandler) Count(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerIdentity(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		List     circuit.EncryptedList `json:"list"`
		OwnerKey models.Key32          `json:"owner_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ownerKey := [32]byte(req.OwnerKey)
	sealed, err := h.runtime.CountAccepted(r.Context(), req.List, &ownerKey)
	if err != nil {
		h.log.WithError(err).WithField("caller", caller).Warn("count evaluation failed")
		http.Error(w, "Evaluation failed", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, sealed)
}
