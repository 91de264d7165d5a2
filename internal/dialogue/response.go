package dialogue

import "vistara/internal/domain"

// TurnResult is the outcome of one turn: a follow-up prompt, or the completed
// slot set when Completion is non-nil.
type TurnResult struct {
	SessionID  string
	Prompt     string
	Completion *domain.Completion
}

func (r TurnResult) IsComplete() bool {
	return r.Completion != nil
}

// BuildResponse projects a TurnResult onto the wire shape.
func BuildResponse(r TurnResult) domain.ConverseResponse {
	if r.Completion != nil {
		return domain.ConverseResponse{SessionID: r.SessionID, Complete: r.Completion}
	}
	return domain.ConverseResponse{SessionID: r.SessionID, Prompt: r.Prompt}
}
