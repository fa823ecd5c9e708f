package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"ouvidoria/contact"
	"ouvidoria/models"
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const formStateKey = "contact_form"

// FormStore keeps one contact form state per visitor session
type FormStore struct {
	sessions *session.Store
	reducer  *contact.Reducer

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewFormStore creates a form store on top of a session store
func NewFormStore(sessions *session.Store, reducer *contact.Reducer) *FormStore {
	return &FormStore{
		sessions: sessions,
		reducer:  reducer,
		locks:    make(map[string]*sessionLock),
	}
}

// Lock serializes load-modify-save cycles of one session and returns the
// matching unlock. Requests without a session cookie start a new session
// and need no lock.
func (fs *FormStore) Lock(c *fiber.Ctx) func() {
	name := fs.cookieName()
	if name == "" {
		return func() {}
	}
	id := c.Cookies(name)
	if id == "" {
		return func() {}
	}
	id = strings.Clone(id)

	fs.mu.Lock()
	l, ok := fs.locks[id]
	if !ok {
		l = &sessionLock{}
		fs.locks[id] = l
	}
	l.refs++
	fs.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		fs.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(fs.locks, id)
		}
		fs.mu.Unlock()
	}
}

// Load returns the visitor's form state, or a pristine one for a new visitor
func (fs *FormStore) Load(c *fiber.Ctx) (contact.FormState, error) {
	sess, err := fs.sessions.Get(c)
	if err != nil {
		return fs.reducer.Initial(), fmt.Errorf("failed to get session: %w", err)
	}

	raw, ok := sess.Get(formStateKey).(string)
	if !ok || raw == "" {
		return fs.reducer.Initial(), nil
	}

	var state contact.FormState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		utils.Log.Warn("Discarding unreadable form state for session %s: %v", sess.ID(), err)
		return fs.reducer.Initial(), nil
	}
	if state.Touched == nil {
		state.Touched = map[models.Field]bool{}
	}
	if state.Errors == nil {
		state.Errors = contact.FieldErrors{}
	}
	return state, nil
}

// Save stores the form state in the visitor's session
func (fs *FormStore) Save(c *fiber.Ctx, state contact.FormState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal form state: %w", err)
	}

	sess, err := fs.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	id := sess.ID()
	sess.Set(formStateKey, string(data))
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	// Later loads and saves in the same request must resolve to this session,
	// including a fresh one whose cookie only exists on the response
	if name := fs.cookieName(); name != "" {
		c.Request().Header.SetCookie(name, id)
	}
	return nil
}

// cookieName returns the session cookie name, or "" when the session id is
// not carried in a cookie
func (fs *FormStore) cookieName() string {
	parts := strings.SplitN(fs.sessions.KeyLookup, ":", 2)
	if len(parts) != 2 || parts[0] != "cookie" {
		return ""
	}
	return parts[1]
}
