package services

import "sync"

// GenerateAllID is the busy id used while a bulk generation runs.
const GenerateAllID = "all"

// GenerationGuard holds, per session, the id of the generation in flight.
// While a session has a busy id every generate control is disabled and
// further generate requests from that session are refused.
type GenerationGuard struct {
	mu   sync.Mutex
	busy map[string]string
}

func NewGenerationGuard() *GenerationGuard {
	return &GenerationGuard{busy: make(map[string]string)}
}

// Acquire marks id busy for sessionID. It fails when any id is already busy.
func (g *GenerationGuard) Acquire(sessionID, id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[sessionID]; ok {
		return false
	}
	g.busy[sessionID] = id
	return true
}

// Release clears the busy id for sessionID.
func (g *GenerationGuard) Release(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, sessionID)
}

// Busy returns the id in flight for sessionID, or "".
func (g *GenerationGuard) Busy(sessionID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy[sessionID]
}
