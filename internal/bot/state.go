package bot

import "sync"

// step is the conversational position of a chat.
type step int

const (
	stepIdle step = iota
	stepAwaitPrompt
	stepAwaitStyle
)

type chatState struct {
	step step
	busy bool
}

// stateRegistry tracks the in-memory conversational state per chat. The busy
// flag guarantees a chat never has two unresolved generation jobs: a second
// prompt is refused instead of submitted.
type stateRegistry struct {
	mu    sync.Mutex
	chats map[int64]*chatState
}

func newStateRegistry() *stateRegistry {
	return &stateRegistry{chats: make(map[int64]*chatState)}
}

func (r *stateRegistry) state(chatID int64) *chatState {
	st, ok := r.chats[chatID]
	if !ok {
		st = &chatState{}
		r.chats[chatID] = st
	}
	return st
}

func (r *stateRegistry) setStep(chatID int64, s step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(chatID).step = s
}

func (r *stateRegistry) getStep(chatID int64) step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state(chatID).step
}

// tryBeginJob marks the chat busy. It reports false when a job is already in
// flight, in which case the caller must not submit.
func (r *stateRegistry) tryBeginJob(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(chatID)
	if st.busy {
		return false
	}
	st.busy = true
	return true
}

func (r *stateRegistry) endJob(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(chatID).busy = false
}
