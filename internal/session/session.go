// Package session runs one presenter per WebSocket connection. The
// session goroutine is the presenter's event loop: every client event
// and every debounce fire is executed there, one at a time, so the
// presenter itself needs no locking.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/telesearch/telesearch/internal/presenter"
	"github.com/telesearch/telesearch/internal/tmdb"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is a message from the browser driving the presenter.
type Event struct {
	Type       string           `json:"type"`
	Query      string           `json:"query,omitempty"`
	Suggestion *tmdb.Suggestion `json:"suggestion,omitempty"`
	Value      int              `json:"value,omitempty"`
	Page       int              `json:"page,omitempty"`
}

// Message is a server push to the browser.
type Message struct {
	Type    string         `json:"type"`
	Payload presenter.View `json:"payload"`
}

// Manager creates presenter sessions for incoming connections.
type Manager struct {
	searcher        presenter.Searcher
	suggester       presenter.Suggester
	downloadBaseURL string
	pageSize        int
	posterURL       func(path, size string) string
	logger          zerolog.Logger
}

// NewManager creates a session manager.
func NewManager(searcher presenter.Searcher, suggester presenter.Suggester, downloadBaseURL string, pageSize int, posterURL func(path, size string) string, logger zerolog.Logger) *Manager {
	return &Manager{
		searcher:        searcher,
		suggester:       suggester,
		downloadBaseURL: downloadBaseURL,
		pageSize:        pageSize,
		posterURL:       posterURL,
		logger:          logger.With().Str("component", "session").Logger(),
	}
}

// HandleWebSocket upgrades the connection and runs a presenter session
// until the peer goes away.
func (m *Manager) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		m.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return err
	}

	s := &session{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, 64),
		loop:   make(chan func(), 64),
		closed: make(chan struct{}),
	}
	s.logger = m.logger.With().Str("session", s.id).Logger()

	s.pres = presenter.New(presenter.Options{
		Searcher:        m.searcher,
		Suggester:       m.suggester,
		DownloadBaseURL: m.downloadBaseURL,
		PageSize:        m.pageSize,
		PosterURL:       m.posterURL,
		Dispatch:        s.dispatch,
		Publish:         s.pushView,
		Logger:          s.logger,
	})

	s.logger.Debug().Msg("session opened")

	go s.writePump()
	go s.readPump()
	s.run()

	return nil
}

// session is one connected client and its presenter.
type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	loop   chan func()
	closed chan struct{}
	pres   *presenter.Presenter
	logger zerolog.Logger
}

// run is the event loop. It owns all presenter state.
func (s *session) run() {
	defer s.pres.Close()

	// Initial snapshot so the page renders without waiting for input.
	s.pushView(s.pres.View())

	for {
		select {
		case fn := <-s.loop:
			fn()
		case <-s.closed:
			s.logger.Debug().Msg("session closed")
			return
		}
	}
}

// dispatch hands a callback to the session loop. Used both by the read
// pump and by the presenter's debounce timer.
func (s *session) dispatch(fn func()) {
	select {
	case s.loop <- fn:
	case <-s.closed:
	}
}

func (s *session) handleEvent(ev Event) {
	ctx := context.Background()

	switch ev.Type {
	case "set_query":
		s.pres.SetQuery(ev.Query)
	case "select_suggestion":
		if ev.Suggestion != nil {
			s.pres.SelectSuggestion(*ev.Suggestion)
		}
	case "set_movie_year":
		s.pres.SetMovieYear(ev.Value)
	case "set_season":
		s.pres.SetSeason(ev.Value)
	case "set_episode":
		s.pres.SetEpisode(ev.Value)
	case "submit":
		s.pres.Submit(ctx)
	case "page":
		s.pres.GoToPage(ctx, ev.Page)
	case "reset":
		s.pres.Reset()
	default:
		s.logger.Debug().Str("type", ev.Type).Msg("unknown event type")
	}
}

func (s *session) pushView(v presenter.View) {
	payload, err := json.Marshal(Message{Type: "view", Payload: v})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode view")
		return
	}
	select {
	case s.send <- payload:
	case <-s.closed:
	default:
		// Slow consumer; drop the snapshot, a newer one will follow.
	}
}

// readPump reads client events and forwards them to the session loop.
func (s *session) readPump() {
	defer func() {
		close(s.closed)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Msg("websocket read error")
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Debug().Err(err).Msg("malformed event")
			continue
		}

		select {
		case s.loop <- func() { s.handleEvent(ev) }:
		case <-s.closed:
			return
		}
	}
}

// writePump writes queued messages and keepalive pings to the peer.
func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closed:
			return
		}
	}
}
