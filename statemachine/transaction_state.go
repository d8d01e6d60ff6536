package statemachine

import (
	"fmt"
	"os"
	"strings"

	"waysfood-api/models"

	"github.com/goccy/go-yaml"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.TransactionStatus `yaml:"from" json:"from"`
	To    models.TransactionStatus `yaml:"to" json:"to"`
	Actor models.UserRole          `yaml:"actor" json:"actor"`
}

// Definition is the serialized form of a machine, as read from STATE_MACHINE_FILE.
type Definition struct {
	Initial     models.TransactionStatus `yaml:"initial"`
	Transitions []Transition             `yaml:"transitions"`
}

// defaultTransitions uses the status vocabulary the mobile clients already send.
var defaultTransitions = []Transition{
	// Partner accepts and dispatches the order
	{From: models.StatusWaitingApprove, To: models.StatusOnTheWay, Actor: models.RolePartner},
	// Either side can cancel before dispatch
	{From: models.StatusWaitingApprove, To: models.StatusCancel, Actor: models.RolePartner},
	{From: models.StatusWaitingApprove, To: models.StatusCancel, Actor: models.RoleCustomer},
	// Customer confirms receipt
	{From: models.StatusOnTheWay, To: models.StatusSuccess, Actor: models.RoleCustomer},
}

type transitionKey struct {
	From  models.TransactionStatus
	To    models.TransactionStatus
	Actor models.UserRole
}

// Machine validates status changes against a fixed transition table.
type Machine struct {
	initial     models.TransactionStatus
	transitions []Transition
	lookup      map[transitionKey]bool
}

// Default returns the built-in machine starting at "waiting approve".
func Default() *Machine {
	m, _ := New(Definition{Initial: models.StatusWaitingApprove, Transitions: defaultTransitions})
	return m
}

// New builds a machine from a definition.
func New(def Definition) (*Machine, error) {
	if def.Initial == "" {
		return nil, fmt.Errorf("state machine: initial state is required")
	}
	m := &Machine{
		initial:     def.Initial,
		transitions: make([]Transition, 0, len(def.Transitions)),
		lookup:      make(map[transitionKey]bool, len(def.Transitions)),
	}
	for i, t := range def.Transitions {
		if t.From == "" || t.To == "" {
			return nil, fmt.Errorf("state machine: transition %d has an empty state", i)
		}
		if !t.Actor.Valid() {
			return nil, fmt.Errorf("state machine: transition %d has unknown actor %q", i, t.Actor)
		}
		m.transitions = append(m.transitions, t)
		m.lookup[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m, nil
}

// LoadFile reads a YAML definition. An empty path yields the default machine.
func LoadFile(path string) (*Machine, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("state machine: %w", err)
	}
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("state machine: parse %s: %w", path, err)
	}
	return New(def)
}

// Initial is the status every new transaction starts in.
func (m *Machine) Initial() models.TransactionStatus {
	return m.initial
}

// ValidTransitionsFrom returns all valid next states from a given state
func (m *Machine) ValidTransitionsFrom(status models.TransactionStatus) []models.TransactionStatus {
	nexts := []models.TransactionStatus{}
	seen := map[models.TransactionStatus]bool{}
	for _, t := range m.transitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func (m *Machine) CanTransition(from, to models.TransactionStatus, actor models.UserRole) error {
	if m.lookup[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for %s. Valid transitions from %s are: %s",
		from, to, actor, from, m.describeValidFrom(from))
}

// IsTerminal reports whether no transition leaves status.
func (m *Machine) IsTerminal(status models.TransactionStatus) bool {
	return len(m.ValidTransitionsFrom(status)) == 0
}

// TerminalStates lists every reachable state with no outgoing transition.
func (m *Machine) TerminalStates() []models.TransactionStatus {
	var out []models.TransactionStatus
	seen := map[models.TransactionStatus]bool{}
	for _, t := range m.transitions {
		if !seen[t.To] && m.IsTerminal(t.To) {
			out = append(out, t.To)
		}
		seen[t.To] = true
	}
	return out
}

// Transitions returns the full table for documentation
func (m *Machine) Transitions() []Transition {
	out := make([]Transition, len(m.transitions))
	copy(out, m.transitions)
	return out
}

func (m *Machine) describeValidFrom(status models.TransactionStatus) string {
	nexts := m.ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
