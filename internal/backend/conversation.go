// Package backend is a local development chatbot backend. It speaks the
// same HTTP contract the chat client uses, with a small scripted
// conversation in place of the scheduling assistant.
package backend

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Conversation steps.
const (
	StepPresentation   = "apresentacao"
	StepAwaitingIntent = "aguardando_intent"
	StepFinished       = "finalizado"
)

// Specialty is one service line offered by the clinic.
type Specialty struct {
	Name string
	Icon string
}

// DefaultSpecialties mirrors the seed data of the scheduling backend.
var DefaultSpecialties = []Specialty{
	{Name: "Clínica Geral", Icon: "🩺"},
	{Name: "Odontologia", Icon: "🦷"},
	{Name: "Oftalmologia", Icon: "👁️"},
	{Name: "Cardiologia", Icon: "❤️"},
}

var cancelWords = []string{"cancelar", "voltar", "recomeçar", "desistir", "sair"}

var availabilityWords = []string{"disponível", "disponivel", "horários", "horarios"}

// Conversation is the per-session state.
type Conversation struct {
	SessionID       string
	Step            string
	CreatedAt       time.Time
	LastInteraction time.Time
}

// Reply is the outcome of one turn.
type Reply struct {
	Message string `json:"message"`
	Intent  string `json:"intent_detected"`
	Step    string `json:"current_step"`
	Action  string `json:"action_taken"`
}

// Conversations holds every live conversation, keyed by session id.
type Conversations struct {
	mu          sync.Mutex
	items       map[string]*Conversation
	clinicName  string
	specialties []Specialty
	now         func() time.Time
}

// NewConversations creates an empty conversation table.
func NewConversations(clinicName string, specialties []Specialty) *Conversations {
	if len(specialties) == 0 {
		specialties = DefaultSpecialties
	}
	return &Conversations{
		items:       make(map[string]*Conversation),
		clinicName:  clinicName,
		specialties: specialties,
		now:         time.Now,
	}
}

// getOrCreate returns the conversation for id. Caller holds mu.
func (c *Conversations) getOrCreate(id string) *Conversation {
	conv, ok := c.items[id]
	if !ok {
		now := c.now()
		conv = &Conversation{SessionID: id, Step: StepPresentation, CreatedAt: now, LastInteraction: now}
		c.items[id] = conv
	}
	return conv
}

// Reset drops the conversation for id. Unknown ids are ignored.
func (c *Conversations) Reset(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}

// Len returns the number of live conversations.
func (c *Conversations) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Handle processes one user message and returns the reply.
// The first turn of every conversation is the presentation, whatever the
// user wrote.
func (c *Conversations) Handle(sessionID, message string) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv := c.getOrCreate(sessionID)
	conv.LastInteraction = c.now()
	lower := strings.ToLower(strings.TrimSpace(message))

	if conv.Step == StepPresentation {
		conv.Step = StepAwaitingIntent
		return Reply{
			Message: c.presentation(),
			Intent:  "greeting",
			Step:    conv.Step,
			Action:  "apresentacao",
		}
	}

	if containsAny(lower, cancelWords) {
		delete(c.items, sessionID)
		return Reply{
			Message: "Tudo bem! Conversa reiniciada. Se precisar de algo, é só me chamar! 😊",
			Intent:  "cancel",
			Step:    StepFinished,
			Action:  "cancelado",
		}
	}

	if containsAny(lower, availabilityWords) {
		return Reply{
			Message: "📅 **Horários disponíveis:**\n\nNo ambiente de desenvolvimento não há agenda conectada.\n\nGostaria de agendar uma consulta?",
			Intent:  "check_availability",
			Step:    conv.Step,
			Action:  "mostrando_disponibilidade",
		}
	}

	return Reply{
		Message: "Como posso ajudar? Você pode agendar uma consulta ou verificar horários disponíveis.",
		Intent:  "unknown",
		Step:    conv.Step,
		Action:  "resposta_padrao",
	}
}

func (c *Conversations) presentation() string {
	lines := make([]string, len(c.specialties))
	for i, s := range c.specialties {
		lines[i] = fmt.Sprintf("   %s %s", s.Icon, s.Name)
	}
	return fmt.Sprintf("Olá! 👋 Bem-vindo(a) à %s!\n\nOferecemos consultas nas seguintes especialidades:\n%s\n\nComo posso ajudar você hoje?",
		c.clinicName, strings.Join(lines, "\n"))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
