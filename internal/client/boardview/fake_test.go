package boardview_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBoom = errors.New("boom")

type call struct {
	name      string
	container primitive.ObjectID
	positions []ordering.Position
	order     int
}

// fakeAPI keeps a board in memory and answers like the server: bulk
// reorders overwrite verbatim and ignore foreign ids, a move renumbers both
// columns.
type fakeAPI struct {
	mu      sync.Mutex
	board   models.Board
	columns map[primitive.ObjectID]*models.Column
	cards   map[primitive.ObjectID]*models.Card
	calls   []call
	gets    int

	failAt int // 1-based index of the mutating call that fails; 0 = none

	// When gate is set the first mutating call signals entered and waits.
	gate    chan struct{}
	entered chan struct{}
}

type fixture struct {
	api        *fakeAPI
	todo, done primitive.ObjectID
	x, y, z, d primitive.ObjectID
	backlog    primitive.ObjectID
	boardID    primitive.ObjectID
}

// newFixture builds Todo[X,Y,Z], Done[D], Backlog[].
func newFixture() fixture {
	f := fixture{
		boardID: primitive.NewObjectID(),
		todo:    primitive.NewObjectID(),
		done:    primitive.NewObjectID(),
		backlog: primitive.NewObjectID(),
		x:       primitive.NewObjectID(),
		y:       primitive.NewObjectID(),
		z:       primitive.NewObjectID(),
		d:       primitive.NewObjectID(),
	}
	api := &fakeAPI{
		board:   models.Board{ID: f.boardID, Name: "Work"},
		columns: map[primitive.ObjectID]*models.Column{},
		cards:   map[primitive.ObjectID]*models.Card{},
	}
	for i, c := range []struct {
		id   primitive.ObjectID
		name string
	}{{f.todo, "Todo"}, {f.done, "Done"}, {f.backlog, "Backlog"}} {
		api.columns[c.id] = &models.Column{ID: c.id, Name: c.name, BoardID: f.boardID, Order: i}
	}
	for i, id := range []primitive.ObjectID{f.x, f.y, f.z} {
		api.cards[id] = &models.Card{ID: id, Title: string(rune('X' + i)), ColumnID: f.todo, Order: i}
	}
	api.cards[f.d] = &models.Card{ID: f.d, Title: "D", ColumnID: f.done, Order: 0,
		Comments: []models.Comment{{ID: primitive.NewObjectID(), Text: "keep me", CardID: f.d}}}
	f.api = api
	return f
}

func (f *fakeAPI) mutating(c call) error {
	f.calls = append(f.calls, c)
	if f.gate != nil && len(f.calls) == 1 {
		gate := f.gate
		f.mu.Unlock()
		close(f.entered)
		<-gate
		f.mu.Lock()
	}
	if f.failAt == len(f.calls) {
		return errBoom
	}
	return nil
}

func (f *fakeAPI) positions(col primitive.ObjectID) []ordering.Position {
	var out []ordering.Position
	for _, c := range f.cardsIn(col) {
		out = append(out, c.Position())
	}
	return out
}

func (f *fakeAPI) cardsIn(col primitive.ObjectID) []models.Card {
	out := []models.Card{}
	for _, c := range f.cards {
		if c.ColumnID == col {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func (f *fakeAPI) columnList() []models.Column {
	out := []models.Column{}
	for _, c := range f.columns {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (f *fakeAPI) GetBoard(_ context.Context, id primitive.ObjectID) (models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	b := f.board
	b.Columns = f.columnList()
	for i := range b.Columns {
		b.Columns[i].Cards = f.cardsIn(b.Columns[i].ID)
	}
	return b, nil
}

func (f *fakeAPI) ReorderColumns(_ context.Context, boardID primitive.ObjectID, positions []ordering.Position) ([]models.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutating(call{name: "ReorderColumns", container: boardID, positions: positions}); err != nil {
		return nil, err
	}
	for _, p := range positions {
		if c, ok := f.columns[p.ID]; ok {
			c.Order = p.Order
		}
	}
	return f.columnList(), nil
}

func (f *fakeAPI) ReorderCards(_ context.Context, columnID primitive.ObjectID, positions []ordering.Position) ([]models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutating(call{name: "ReorderCards", container: columnID, positions: positions}); err != nil {
		return nil, err
	}
	for _, p := range positions {
		if c, ok := f.cards[p.ID]; ok && c.ColumnID == columnID {
			c.Order = p.Order
		}
	}
	out := f.cardsIn(columnID)
	for i := range out {
		out[i].Comments = nil // bulk echoes carry no children
	}
	return out, nil
}

func (f *fakeAPI) MoveCard(_ context.Context, id, columnID primitive.ObjectID, order int) (models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutating(call{name: "MoveCard", container: columnID, order: order}); err != nil {
		return models.Card{}, err
	}
	card := f.cards[id]
	src, dst, err := ordering.Move(f.positions(card.ColumnID), f.positions(columnID), id, order)
	if err != nil {
		return models.Card{}, err
	}
	card.ColumnID = columnID
	for _, p := range append(src, dst...) {
		f.cards[p.ID].Order = p.Order
	}
	out := *card
	return out, nil
}

func (f *fakeAPI) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.name
	}
	return out
}
