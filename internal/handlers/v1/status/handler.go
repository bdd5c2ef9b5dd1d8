package status

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carson-networks/ledger-forensics/internal/detector"
	"github.com/carson-networks/ledger-forensics/internal/logging"
)

type detectorLister interface {
	Detectors() []detector.Detector
}

type Handler struct {
	Engine detectorLister
}

type Response struct {
	Status    string         `json:"status"`
	Detectors []DetectorInfo `json:"detectors"`
}

type DetectorInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewHandler(eng detectorLister) Handler {
	return Handler{Engine: eng}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	resp := Response{Status: "ok", Detectors: make([]DetectorInfo, 0)}
	if h.Engine != nil {
		for _, d := range h.Engine.Detectors() {
			resp.Detectors = append(resp.Detectors, DetectorInfo{Name: d.Name(), Description: d.Description()})
		}
	}
	logData.AddData("detectors", len(resp.Detectors))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(resp)
}
