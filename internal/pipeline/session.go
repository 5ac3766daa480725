package pipeline

import (
	"github.com/joseph-ayodele/invoice-auditor/internal/anomaly"
	"github.com/joseph-ayodele/invoice-auditor/internal/entity"
)

// Session is the explicit per-session context object: the caller-supplied
// credential, the contract window, and the last results the presentation
// layer reads back. Created at session start, cleared at session end,
// never persisted. The processing model is single-threaded, so Session
// carries no locking.
type Session struct {
	APIKey     string
	Window     *anomaly.DateWindow
	LastResult *entity.ExtractionResult
	LastReport *anomaly.Report
}

func NewSession() *Session {
	return &Session{}
}

// Clear drops the credential and any cached results.
func (s *Session) Clear() {
	*s = Session{}
}
