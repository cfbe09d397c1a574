package lifecycle

import (
	"strings"

	"github.com/destekhq/ticket-core/internal/domain"
)

// SyntheticMessage describes a system-authored thread entry a transition wants
// appended alongside the status change.
type SyntheticMessage struct {
	SenderID int64
	Sender   domain.SenderKind
	Kind     domain.MessageKind
	Body     string
}

// Decision is the value a policy operation produces: the next state plus the
// effects to apply. The engine applies it; the policy itself performs no I/O
// and mutates nothing.
type Decision struct {
	// Next is the status to move to; nil leaves the current status unchanged.
	Next *domain.Status
	// AssignAgent sets the ticket's agent reference when non-nil.
	AssignAgent *int64
	// SetClosedAt stamps closed_at if it is not already set.
	SetClosedAt bool
	// ForceClosedAt stamps closed_at unconditionally (the explicit close
	// operation overwrites an earlier stamp).
	ForceClosedAt bool
	// Synthetic is an optional system message to append to the thread.
	Synthetic *SyntheticMessage
}

// Policy maps (current state, event) to a Decision using the resolved status
// catalog. All operations are pure.
type Policy struct {
	catalog    *StatusCatalog
	notePrefix string
}

// NewPolicy builds a policy over a loaded catalog. notePrefix prefixes the
// system message recorded for assignment notes.
func NewPolicy(catalog *StatusCatalog, notePrefix string) *Policy {
	return &Policy{catalog: catalog, notePrefix: notePrefix}
}

// Catalog exposes the resolved catalog for collaborators.
func (p *Policy) Catalog() *StatusCatalog {
	return p.catalog
}

// OnCreate moves a new ticket to Open.
func (p *Policy) OnCreate() Decision {
	return Decision{Next: &p.catalog.Open}
}

// OnAssign attaches the agent and moves the ticket to Assigned. A non-blank
// note becomes a system-authored thread message.
func (p *Policy) OnAssign(agentID int64, note string) Decision {
	decision := Decision{
		Next:        &p.catalog.Assigned,
		AssignAgent: &agentID,
	}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		decision.Synthetic = &SyntheticMessage{
			SenderID: domain.SystemSenderID,
			Sender:   domain.SenderSystem,
			Kind:     domain.MessageKindNormal,
			Body:     p.notePrefix + trimmed,
		}
	}
	return decision
}

// OnStatusChange moves to an explicitly requested status. A terminal status
// stamps closed_at unless it is already set; moving away from the terminal
// status never clears it.
func (p *Policy) OnStatusChange(requested domain.Status) Decision {
	return Decision{
		Next:        &requested,
		SetClosedAt: p.catalog.IsTerminal(requested),
	}
}

// OnClose moves to the terminal status and stamps closed_at unconditionally.
func (p *Policy) OnClose() Decision {
	return Decision{
		Next:          &p.catalog.Closed,
		SetClosedAt:   true,
		ForceClosedAt: true,
	}
}

// OnMessageSent reacts to a thread message: a representative responding
// implicitly moves the ticket to InProgress, anyone else leaves it untouched.
func (p *Policy) OnMessageSent(sender domain.SenderKind) Decision {
	if sender != domain.SenderAgent {
		return Decision{}
	}
	return Decision{Next: &p.catalog.InProgress}
}

// OnAgentReply is the compound rule, evaluated in this exact order: an
// unassigned ticket first takes the replying agent and the Assigned status; an
// explicit requested status then wins (stamping closed_at when terminal);
// otherwise the reply nudges the ticket to InProgress. An already assigned
// ticket is never reassigned.
func (p *Policy) OnAgentReply(hasAgent bool, agentID int64, explicit *domain.Status) Decision {
	decision := Decision{}
	if !hasAgent {
		decision.AssignAgent = &agentID
		decision.Next = &p.catalog.Assigned
	}
	if explicit != nil {
		decision.Next = explicit
		decision.SetClosedAt = p.catalog.IsTerminal(*explicit)
		return decision
	}
	decision.Next = &p.catalog.InProgress
	return decision
}
