package analysis

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type explainer interface {
	Explain(detectorName, findingID string) (string, bool)
}

// ExplainInput is the Huma input for explaining a finding.
type ExplainInput struct {
	Detector  string `path:"detector" doc:"Detector name"`
	FindingID string `path:"findingID" minLength:"1" doc:"Identifier of the flagged record or pattern"`
}

// ExplainOutput is the Huma output for explaining a finding.
type ExplainOutput struct {
	Body struct {
		Detector    string `json:"detector"`
		FindingID   string `json:"finding_id"`
		Explanation string `json:"explanation"`
	}
}

// ExplainHandler handles GET /v1/detectors/{detector}/findings/{findingID}/explanation.
type ExplainHandler struct {
	Engine explainer
}

// NewExplainHandler creates a new ExplainHandler.
func NewExplainHandler(eng explainer) *ExplainHandler {
	return &ExplainHandler{Engine: eng}
}

// Register registers the explain endpoint with the Huma API.
func (h *ExplainHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "explain-finding",
		Method:      http.MethodGet,
		Path:        "/v1/detectors/{detector}/findings/{findingID}/explanation",
		Summary:     "Explain finding",
		Description: "Returns the standard audit explanation for a finding of the named detector.",
		Tags:        []string{"Analysis"},
	}, h.handle)
}

func (h *ExplainHandler) handle(_ context.Context, input *ExplainInput) (*ExplainOutput, error) {
	explanation, ok := h.Engine.Explain(input.Detector, input.FindingID)
	if !ok {
		return nil, huma.Error404NotFound("unknown detector " + input.Detector)
	}

	out := &ExplainOutput{}
	out.Body.Detector = input.Detector
	out.Body.FindingID = input.FindingID
	out.Body.Explanation = explanation
	return out, nil
}
