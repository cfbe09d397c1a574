package lifecycle

import (
	"testing"

	"github.com/destekhq/ticket-core/internal/domain"
)

func testCatalog() *StatusCatalog {
	return &StatusCatalog{
		Open:         domain.Status{ID: 1, Name: "Open"},
		Assigned:     domain.Status{ID: 2, Name: "Assigned"},
		InProgress:   domain.Status{ID: 3, Name: "InProgress"},
		Closed:       domain.Status{ID: 6, Name: "Closed"},
		terminalName: "Closed",
	}
}

func TestOnCreate(t *testing.T) {
	policy := NewPolicy(testCatalog(), "Atama Notu: ")
	decision := policy.OnCreate()
	if decision.Next == nil || decision.Next.ID != 1 {
		t.Fatalf("expected Open, got %+v", decision.Next)
	}
	if decision.AssignAgent != nil || decision.SetClosedAt || decision.Synthetic != nil {
		t.Fatalf("unexpected side effects: %+v", decision)
	}
}

func TestOnAssign(t *testing.T) {
	policy := NewPolicy(testCatalog(), "Atama Notu: ")

	t.Run("with note", func(t *testing.T) {
		decision := policy.OnAssign(7, "  VIP musteri  ")
		if decision.Next == nil || decision.Next.ID != 2 {
			t.Fatalf("expected Assigned, got %+v", decision.Next)
		}
		if decision.AssignAgent == nil || *decision.AssignAgent != 7 {
			t.Fatalf("expected agent 7, got %v", decision.AssignAgent)
		}
		if decision.Synthetic == nil {
			t.Fatal("expected synthetic note message")
		}
		if decision.Synthetic.Body != "Atama Notu: VIP musteri" {
			t.Fatalf("note body = %q", decision.Synthetic.Body)
		}
		if decision.Synthetic.Sender != domain.SenderSystem || decision.Synthetic.SenderID != domain.SystemSenderID {
			t.Fatalf("note sender = %+v", decision.Synthetic)
		}
		if decision.Synthetic.Kind != domain.MessageKindNormal {
			t.Fatalf("note kind = %q", decision.Synthetic.Kind)
		}
	})

	t.Run("blank note skipped", func(t *testing.T) {
		decision := policy.OnAssign(7, "   ")
		if decision.Synthetic != nil {
			t.Fatalf("blank note produced synthetic message: %+v", decision.Synthetic)
		}
	})
}

func TestOnStatusChange(t *testing.T) {
	policy := NewPolicy(testCatalog(), "")

	decision := policy.OnStatusChange(domain.Status{ID: 3, Name: "InProgress"})
	if decision.SetClosedAt || decision.ForceClosedAt {
		t.Fatalf("non-terminal change must not stamp closed_at: %+v", decision)
	}

	decision = policy.OnStatusChange(domain.Status{ID: 6, Name: "Closed"})
	if !decision.SetClosedAt {
		t.Fatal("terminal change must stamp closed_at")
	}
	if decision.ForceClosedAt {
		t.Fatal("status change must not overwrite an existing stamp")
	}
}

func TestOnClose(t *testing.T) {
	policy := NewPolicy(testCatalog(), "")
	decision := policy.OnClose()
	if decision.Next == nil || decision.Next.ID != 6 {
		t.Fatalf("expected Closed, got %+v", decision.Next)
	}
	if !decision.SetClosedAt || !decision.ForceClosedAt {
		t.Fatalf("close must stamp closed_at unconditionally: %+v", decision)
	}
}

func TestOnMessageSent(t *testing.T) {
	policy := NewPolicy(testCatalog(), "")

	decision := policy.OnMessageSent(domain.SenderAgent)
	if decision.Next == nil || decision.Next.ID != 3 {
		t.Fatalf("agent message must move to InProgress, got %+v", decision.Next)
	}

	for _, sender := range []domain.SenderKind{domain.SenderCustomer, domain.SenderSystem} {
		decision := policy.OnMessageSent(sender)
		if decision.Next != nil {
			t.Fatalf("%s message must not change status, got %+v", sender, decision.Next)
		}
	}
}

func TestOnAgentReply(t *testing.T) {
	policy := NewPolicy(testCatalog(), "")
	closed := domain.Status{ID: 6, Name: "Closed"}
	waiting := domain.Status{ID: 4, Name: "Waiting"}

	tests := []struct {
		name         string
		hasAgent     bool
		explicit     *domain.Status
		wantNextID   int64
		wantAssign   bool
		wantClosedAt bool
	}{
		{"assigned no explicit", true, nil, 3, false, false},
		{"unassigned no explicit", false, nil, 3, true, false},
		{"assigned explicit", true, &waiting, 4, false, false},
		{"unassigned explicit", false, &waiting, 4, true, false},
		{"explicit terminal", true, &closed, 6, false, true},
		{"unassigned explicit terminal", false, &closed, 6, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.OnAgentReply(tt.hasAgent, 9, tt.explicit)
			if decision.Next == nil || decision.Next.ID != tt.wantNextID {
				t.Fatalf("next = %+v, want id %d", decision.Next, tt.wantNextID)
			}
			if tt.wantAssign {
				if decision.AssignAgent == nil || *decision.AssignAgent != 9 {
					t.Fatalf("expected assignment to agent 9, got %v", decision.AssignAgent)
				}
			} else if decision.AssignAgent != nil {
				t.Fatalf("unexpected reassignment: %v", *decision.AssignAgent)
			}
			if decision.SetClosedAt != tt.wantClosedAt {
				t.Fatalf("SetClosedAt = %v, want %v", decision.SetClosedAt, tt.wantClosedAt)
			}
		})
	}
}
