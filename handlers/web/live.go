package web

import (
	"context"
	"errors"

	"ouvidoria/contact"
	"ouvidoria/models"
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Live message types sent to the client
const (
	LiveState      = "state"
	LiveSubmitting = "submitting"
	LiveReceipt    = "receipt"
	LiveError      = "error"
)

// LiveMessage is one server message on the live channel
type LiveMessage struct {
	Type    string            `json:"type"`
	State   *contact.Snapshot `json:"state,omitempty"`
	Receipt *models.Receipt   `json:"receipt,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// LiveHandler serves the WebSocket form channel. Every connection owns one
// form state that lives as long as the connection.
type LiveHandler struct {
	service *contact.Service
	catalog *utils.Catalog
}

// NewLiveHandler creates a new instance of LiveHandler
func NewLiveHandler(service *contact.Service, catalog *utils.Catalog) *LiveHandler {
	return &LiveHandler{service: service, catalog: catalog}
}

// Upgrade rejects plain HTTP requests on the live route
func (h *LiveHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve returns the WebSocket handler
func (h *LiveHandler) Serve() fiber.Handler {
	return websocket.New(h.handleConn)
}

func (h *LiveHandler) handleConn(conn *websocket.Conn) {
	id := uuid.New().String()
	log := utils.Log.WithField("conn", id)
	log.Info("Live form connected")
	defer func() {
		conn.Close()
		log.Info("Live form disconnected")
	}()

	session := h.NewSession()
	if err := session.emitState(conn.WriteJSON); err != nil {
		return
	}

	for {
		var ev contact.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Live read failed: %v", err)
			}
			return
		}
		if err := session.Handle(context.Background(), ev, conn.WriteJSON); err != nil {
			log.Error("Live write failed: %v", err)
			return
		}
	}
}

// NewSession starts a pristine form for one connection
func (h *LiveHandler) NewSession() *LiveSession {
	return &LiveSession{
		service: h.service,
		catalog: h.catalog,
		state:   h.service.Reducer().Initial(),
	}
}

// LiveSession is the form state of a single live connection. Events are
// handled one at a time by the connection's read loop.
type LiveSession struct {
	service *contact.Service
	catalog *utils.Catalog
	state   contact.FormState
}

// State returns the current form state
func (s *LiveSession) State() contact.FormState {
	return s.state
}

// Handle applies one client event and emits the resulting messages. Only
// errors from emit are returned; event errors are reported to the client.
func (s *LiveSession) Handle(ctx context.Context, ev contact.Event, emit func(interface{}) error) error {
	switch ev.Kind {
	case contact.EventSubmit:
		return s.submit(ctx, emit)
	case contact.EventChange, contact.EventBlur, contact.EventReset:
	default:
		return emit(LiveMessage{Type: LiveError, Error: "unsupported event " + string(ev.Kind)})
	}

	next, err := s.service.Reducer().Apply(s.state, ev)
	if err != nil {
		return emit(LiveMessage{Type: LiveError, Error: s.eventMessage(err)})
	}
	s.state = next
	return s.emitState(emit)
}

func (s *LiveSession) submit(ctx context.Context, emit func(interface{}) error) error {
	var emitErr error
	final, receipt, err := s.service.Submit(ctx, s.state, func(submitting contact.FormState) error {
		snap := submitting.Snapshot()
		emitErr = emit(LiveMessage{Type: LiveSubmitting, State: &snap})
		return emitErr
	})
	if emitErr != nil {
		return emitErr
	}
	s.state = final

	switch {
	case errors.Is(err, contact.ErrNotSubmittable):
		if err := s.emitState(emit); err != nil {
			return err
		}
		return emit(LiveMessage{Type: LiveError, Error: s.catalog.T(utils.MsgInvalidDraft)})
	case err != nil:
		if err := s.emitState(emit); err != nil {
			return err
		}
		return emit(LiveMessage{Type: LiveError, Error: s.eventMessage(err)})
	}

	snap := final.Snapshot()
	return emit(LiveMessage{Type: LiveReceipt, State: &snap, Receipt: receipt})
}

func (s *LiveSession) emitState(emit func(interface{}) error) error {
	snap := s.state.Snapshot()
	return emit(LiveMessage{Type: LiveState, State: &snap})
}

func (s *LiveSession) eventMessage(err error) string {
	switch {
	case errors.Is(err, contact.ErrSubmitInProgress):
		return s.catalog.T(utils.MsgSubmitInProgress)
	case errors.Is(err, contact.ErrUnknownField):
		return err.Error()
	}
	return s.catalog.T(utils.MsgSubmitFailed)
}
