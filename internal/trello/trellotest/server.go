// Package trellotest runs an in-memory Trello board behind an httptest server.
package trellotest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/ternarybob/ordersync/internal/common"
	"github.com/ternarybob/ordersync/internal/models"
)

const (
	Key     = "test-key"
	Token   = "test-token"
	BoardID = "board1"
	ListID  = "list1"
)

// Board is the fake board state. Fields may be read under Lock/Unlock.
type Board struct {
	sync.Mutex

	Cards    []*models.Card
	Labels   []models.Label
	Requests []string // "METHOD /path"

	// FailPaths returns 500 for any request whose "METHOD /path" has one of these prefixes
	FailPaths []string

	server *httptest.Server
	nextID int
}

// New starts a fake board server. Call Close when done.
func New() *Board {
	b := &Board{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /boards/{board}", b.getBoard)
	mux.HandleFunc("GET /boards/{board}/cards", b.listBoardCards)
	mux.HandleFunc("GET /boards/{board}/labels", b.listLabels)
	mux.HandleFunc("GET /lists/{list}/cards", b.listListCards)
	mux.HandleFunc("GET /cards/{card}", b.getCard)
	mux.HandleFunc("POST /cards", b.createCard)
	mux.HandleFunc("PUT /cards/{card}", b.updateCard)
	mux.HandleFunc("PUT /cards/{card}/idLabels", b.setCardLabels)
	mux.HandleFunc("POST /labels", b.createLabel)

	b.server = httptest.NewServer(b.middleware(mux))
	return b
}

// Close shuts the server down
func (b *Board) Close() {
	b.server.Close()
}

// URL is the API base URL
func (b *Board) URL() string {
	return b.server.URL
}

// Config returns a complete Trello config pointing at the fake
func (b *Board) Config() common.TrelloConfig {
	return common.TrelloConfig{
		APIKey:            Key,
		APIToken:          Token,
		BoardID:           BoardID,
		ListID:            ListID,
		BaseURL:           b.server.URL,
		RequestsPerSecond: 1000,
		Timeout:           "5s",
		WriteDelay:        "0s",
	}
}

// AddLabel adds a board label and returns its id
func (b *Board) AddLabel(name, color string) string {
	b.Lock()
	defer b.Unlock()
	id := b.newID("label")
	b.Labels = append(b.Labels, models.Label{ID: id, Name: name, Color: color, IDBoard: BoardID})
	return id
}

// AddCard adds a card to the configured list and returns its id
func (b *Board) AddCard(name, desc string, labelIDs ...string) string {
	b.Lock()
	defer b.Unlock()
	id := b.newID("card")
	b.Cards = append(b.Cards, &models.Card{ID: id, Name: name, Desc: desc, IDList: ListID, IDLabels: append([]string{}, labelIDs...)})
	return id
}

// Card returns a copy of a card, or nil
func (b *Board) Card(id string) *models.Card {
	b.Lock()
	defer b.Unlock()
	if c := b.findCard(id); c != nil {
		copied := *c
		copied.IDLabels = append([]string{}, c.IDLabels...)
		return &copied
	}
	return nil
}

// CardCount returns the number of cards on the board
func (b *Board) CardCount() int {
	b.Lock()
	defer b.Unlock()
	return len(b.Cards)
}

// LabelNames returns the names of the labels attached to a card
func (b *Board) LabelNames(cardID string) []string {
	b.Lock()
	defer b.Unlock()
	c := b.findCard(cardID)
	if c == nil {
		return nil
	}
	var names []string
	for _, id := range c.IDLabels {
		for _, l := range b.Labels {
			if l.ID == id {
				names = append(names, l.Name)
			}
		}
	}
	return names
}

// RequestCount counts requests whose "METHOD /path" starts with prefix
func (b *Board) RequestCount(prefix string) int {
	b.Lock()
	defer b.Unlock()
	n := 0
	for _, r := range b.Requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (b *Board) newID(kind string) string {
	b.nextID++
	return fmt.Sprintf("%s%d", kind, b.nextID)
}

func (b *Board) findCard(id string) *models.Card {
	for _, c := range b.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

type requestBodyKey struct{}

func (b *Board) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := r.Method + " " + r.URL.Path

		b.Lock()
		b.Requests = append(b.Requests, call)
		failing := false
		for _, prefix := range b.FailPaths {
			if strings.HasPrefix(call, prefix) {
				failing = true
			}
		}
		b.Unlock()

		if failing {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}

		key, token := r.URL.Query().Get("key"), r.URL.Query().Get("token")
		if r.Method != http.MethodGet {
			body := map[string]interface{}{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid body", http.StatusBadRequest)
				return
			}
			key, _ = body["key"].(string)
			token, _ = body["token"].(string)
			r = r.WithContext(withBody(r.Context(), body))
		}

		if key != Key || token != Token {
			http.Error(w, "invalid key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (b *Board) checkBoard(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("board") != BoardID {
		http.Error(w, "board not found", http.StatusNotFound)
		return false
	}
	return true
}

func (b *Board) getBoard(w http.ResponseWriter, r *http.Request) {
	if !b.checkBoard(w, r) {
		return
	}
	writeJSON(w, models.Board{ID: BoardID, Name: "Orders", URL: "https://trello.com/b/" + BoardID})
}

func (b *Board) listBoardCards(w http.ResponseWriter, r *http.Request) {
	if !b.checkBoard(w, r) {
		return
	}
	b.Lock()
	cards := make([]models.Card, 0, len(b.Cards))
	for _, c := range b.Cards {
		cards = append(cards, models.Card{ID: c.ID, Name: c.Name, Desc: c.Desc, IDList: c.IDList})
	}
	b.Unlock()
	writeJSON(w, cards)
}

func (b *Board) listLabels(w http.ResponseWriter, r *http.Request) {
	if !b.checkBoard(w, r) {
		return
	}
	b.Lock()
	labels := append([]models.Label{}, b.Labels...)
	b.Unlock()
	writeJSON(w, labels)
}

func (b *Board) listListCards(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("list")
	b.Lock()
	cards := []models.Card{}
	for _, c := range b.Cards {
		if c.IDList == listID {
			cards = append(cards, *c)
		}
	}
	b.Unlock()
	writeJSON(w, cards)
}

func (b *Board) getCard(w http.ResponseWriter, r *http.Request) {
	b.Lock()
	c := b.findCard(r.PathValue("card"))
	var out models.Card
	if c != nil {
		out = *c
	}
	b.Unlock()

	if c == nil {
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}
	writeJSON(w, out)
}

func (b *Board) createCard(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	name, _ := body["name"].(string)
	desc, _ := body["desc"].(string)
	listID, _ := body["idList"].(string)
	if listID == "" {
		http.Error(w, "invalid value for idList", http.StatusBadRequest)
		return
	}

	b.Lock()
	card := &models.Card{ID: b.newID("card"), Name: name, Desc: desc, IDList: listID, IDLabels: []string{}}
	b.Cards = append(b.Cards, card)
	out := *card
	b.Unlock()

	writeJSON(w, out)
}

func (b *Board) updateCard(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())

	b.Lock()
	c := b.findCard(r.PathValue("card"))
	if c == nil {
		b.Unlock()
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}
	if name, ok := body["name"].(string); ok {
		c.Name = name
	}
	if desc, ok := body["desc"].(string); ok {
		c.Desc = desc
	}
	out := *c
	b.Unlock()

	writeJSON(w, out)
}

func (b *Board) setCardLabels(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	value, _ := body["value"].(string)

	b.Lock()
	c := b.findCard(r.PathValue("card"))
	if c == nil {
		b.Unlock()
		http.Error(w, "card not found", http.StatusNotFound)
		return
	}
	c.IDLabels = []string{}
	if value != "" {
		c.IDLabels = strings.Split(value, ",")
	}
	ids := append([]string{}, c.IDLabels...)
	b.Unlock()

	writeJSON(w, ids)
}

func (b *Board) createLabel(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	name, _ := body["name"].(string)
	color, _ := body["color"].(string)
	boardID, _ := body["idBoard"].(string)
	if boardID != BoardID {
		http.Error(w, "invalid idBoard", http.StatusBadRequest)
		return
	}

	b.Lock()
	label := models.Label{ID: b.newID("label"), Name: name, Color: color, IDBoard: boardID}
	b.Labels = append(b.Labels, label)
	b.Unlock()

	writeJSON(w, label)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
