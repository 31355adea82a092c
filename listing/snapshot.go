package listing

import (
	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/outcome"
)

// Phase is the state of a list session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Snapshot is the state of a Session at one point in time. Items is a copy
// and may be kept by the receiver.
type Snapshot struct {
	SessionID string             `json:"session_id"`
	Phase     Phase              `json:"phase"`
	Appending bool               `json:"appending"`
	Query     string             `json:"query"`
	Items     []articles.Article `json:"items"`
	Err       *outcome.Error     `json:"error,omitempty"`

	seq uint64
}

// Outcome renders the snapshot for display. While loading, the items
// already shown ride along as partial data; Idle renders as Loading with
// no partial data.
func (s Snapshot) Outcome() outcome.Outcome[[]articles.Article] {
	switch s.Phase {
	case PhaseSuccess:
		return outcome.Ok(s.Items)
	case PhaseError:
		return outcome.Fail[[]articles.Article](s.Err)
	case PhaseLoading:
		items := s.Items
		return outcome.Pending(&items)
	default:
		return outcome.Pending[[]articles.Article](nil)
	}
}
