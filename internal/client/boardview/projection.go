// Package boardview keeps a client-side projection of one board and drives
// drag and drop against the API.
//
// A drop is applied to the local board at once, then persisted with the
// same calls the web client makes: one bulk order update for a move inside
// a container, or source bulk, destination bulk and a single-card move for a
// move across columns. The server's echo then replaces the local guess.
// When any call fails the projection is replaced by a fresh fetch of the
// board instead of keeping a state the server never agreed to.
//
// Every change to the local board bumps an epoch. A response that comes
// back after a newer change was made is discarded.
package boardview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrNotDragging      = errors.New("boardview: no drag in progress")
	ErrAlreadyDragging  = errors.New("boardview: drag already in progress")
	ErrUnknownItem      = errors.New("boardview: item is not on this board")
	ErrUnknownContainer = errors.New("boardview: destination column is not on this board")
)

// API is the part of the REST client a projection needs.
// *client.Client satisfies it.
type API interface {
	GetBoard(ctx context.Context, id primitive.ObjectID) (models.Board, error)
	ReorderColumns(ctx context.Context, boardID primitive.ObjectID, positions []ordering.Position) ([]models.Column, error)
	ReorderCards(ctx context.Context, columnID primitive.ObjectID, positions []ordering.Position) ([]models.Card, error)
	MoveCard(ctx context.Context, id, columnID primitive.ObjectID, order int) (models.Card, error)
}

// Destination is where a dragged item was dropped. For columns
// ContainerID is ignored; the board is the only container.
type Destination struct {
	ContainerID primitive.ObjectID
	Index       int
}

type drag struct {
	kind  Kind
	id    primitive.ObjectID
	from  primitive.ObjectID // source column for cards
	index int
}

type Projection struct {
	api     API
	log     *zap.Logger
	boardID primitive.ObjectID

	mu    sync.Mutex
	board models.Board
	epoch uint64
	state State
	drag  *drag
}

// New wraps an already loaded board.
func New(api API, board models.Board, logger *zap.Logger) *Projection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projection{api: api, log: logger, boardID: board.ID, board: cloneBoard(board)}
}

// Load fetches boardID and wraps it.
func Load(ctx context.Context, api API, boardID primitive.ObjectID, logger *zap.Logger) (*Projection, error) {
	b, err := api.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return New(api, b, logger), nil
}

// Board returns a copy of the current local board.
func (p *Projection) Board() models.Board {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneBoard(p.board)
}

func (p *Projection) Epoch() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epoch
}

func (p *Projection) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Begin picks up a column or card.
func (p *Projection) Begin(kind Kind, id primitive.ObjectID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Dragging {
		return ErrAlreadyDragging
	}

	d := &drag{kind: kind, id: id}
	if !p.locate(d) {
		return ErrUnknownItem
	}
	p.drag = d
	p.state = Dragging
	return nil
}

// locate fills d.from and d.index from the current board. A Refresh may
// replace the board mid-drag, so Drop calls it again before applying.
func (p *Projection) locate(d *drag) bool {
	d.index = -1
	switch d.kind {
	case ColumnItem:
		d.from = p.boardID
		d.index = columnIndex(p.board.Columns, d.id)
	case CardItem:
		for _, col := range p.board.Columns {
			if i := cardIndex(col.Cards, d.id); i >= 0 {
				d.from, d.index = col.ID, i
				break
			}
		}
	}
	return d.index >= 0
}

// Cancel abandons the current drag without touching anything.
func (p *Projection) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Dragging {
		p.state = Idle
		p.drag = nil
	}
}

// Drop ends the current drag. A nil dst means the item was released
// outside any container: the projection returns to Idle and nothing is
// sent. Otherwise the move is applied locally, persisted, and reconciled
// with the server's echo. On a persistence error the board is refetched and
// the error returned.
func (p *Projection) Drop(ctx context.Context, dst *Destination) error {
	p.mu.Lock()
	d := p.drag
	if p.state != Dragging || d == nil {
		p.mu.Unlock()
		return ErrNotDragging
	}
	p.drag = nil
	if dst == nil {
		p.state = Idle
		p.mu.Unlock()
		return nil
	}
	if !p.locate(d) {
		p.state = Idle
		p.mu.Unlock()
		return ErrUnknownItem
	}

	var (
		pl  *plan
		err error
	)
	if d.kind == ColumnItem {
		pl, err = p.applyColumnDrop(d, dst.Index)
	} else {
		pl, err = p.applyCardDrop(d, *dst)
	}
	if err != nil || pl == nil {
		p.state = Idle
		p.mu.Unlock()
		return err
	}
	p.epoch++
	epoch := p.epoch
	p.state = OptimisticallyApplied
	p.mu.Unlock()

	ech, err := pl.run(ctx, p.api)
	if err != nil {
		p.log.Warn("board drop failed; refetching",
			zap.String("board_id", p.boardID.Hex()),
			zap.Stringer("kind", d.kind),
			zap.String("item_id", d.id.Hex()),
			zap.Error(err))
		return p.recover(ctx, epoch, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		// A newer change owns the projection now.
		return nil
	}
	ech.apply(&p.board)
	p.state = Reconciled
	return nil
}

// Refresh replaces the projection with the server's board.
func (p *Projection) Refresh(ctx context.Context) error {
	fresh, err := p.api.GetBoard(ctx, p.boardID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.board = cloneBoard(fresh)
	p.epoch++
	if p.state != Dragging {
		p.state = Idle
	}
	return nil
}

func (p *Projection) recover(ctx context.Context, epoch uint64, cause error) error {
	fresh, ferr := p.api.GetBoard(ctx, p.boardID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		return cause
	}
	p.state = Idle
	if ferr != nil {
		return errors.Join(cause, fmt.Errorf("refetch board: %w", ferr))
	}
	p.board = cloneBoard(fresh)
	p.epoch++
	return cause
}

// applyColumnDrop reorders the local columns. Returns a nil plan when the
// column lands where it started.
func (p *Projection) applyColumnDrop(d *drag, to int) (*plan, error) {
	before := ordering.Sequence(models.ColumnPositions(p.board.Columns))
	after, err := ordering.Reorder(before, d.index, to)
	if err != nil {
		return nil, ErrUnknownItem
	}
	if ordering.IndexOf(after, d.id) == d.index {
		return nil, nil
	}
	p.board.Columns = arrange(p.board.Columns, after,
		func(c models.Column) primitive.ObjectID { return c.ID },
		func(c *models.Column, o int) { c.Order = o })
	return &plan{kind: ColumnItem, boardID: p.boardID, srcPositions: after}, nil
}

// applyCardDrop moves the local card inside or across columns.
func (p *Projection) applyCardDrop(d *drag, dst Destination) (*plan, error) {
	si := columnIndex(p.board.Columns, d.from)
	di := columnIndex(p.board.Columns, dst.ContainerID)
	if di < 0 {
		return nil, ErrUnknownContainer
	}
	if si < 0 {
		return nil, ErrUnknownItem
	}
	src := &p.board.Columns[si]
	setCard := func(c *models.Card, o int) { c.Order = o }
	idOf := func(c models.Card) primitive.ObjectID { return c.ID }

	if si == di {
		before := ordering.Sequence(models.CardPositions(src.Cards))
		after, err := ordering.Reorder(before, d.index, dst.Index)
		if err != nil {
			return nil, ErrUnknownItem
		}
		if ordering.IndexOf(after, d.id) == d.index {
			return nil, nil
		}
		src.Cards = arrange(src.Cards, after, idOf, setCard)
		return &plan{kind: CardItem, src: src.ID, srcPositions: after, cardID: d.id}, nil
	}

	dstCol := &p.board.Columns[di]
	newSrc, newDst, err := ordering.Move(
		ordering.Sequence(models.CardPositions(src.Cards)),
		ordering.Sequence(models.CardPositions(dstCol.Cards)),
		d.id, dst.Index)
	if err != nil {
		return nil, ErrUnknownItem
	}
	pool := append(append([]models.Card{}, src.Cards...), dstCol.Cards...)
	src.Cards = arrange(pool, newSrc, idOf, setCard)
	dstCol.Cards = arrange(pool, newDst, idOf, func(c *models.Card, o int) {
		c.Order = o
		c.ColumnID = dstCol.ID
	})
	return &plan{
		kind:         CardItem,
		cross:        true,
		src:          src.ID,
		dst:          dstCol.ID,
		srcPositions: newSrc,
		dstPositions: newDst,
		cardID:       d.id,
		index:        ordering.IndexOf(newDst, d.id),
	}, nil
}

// plan is the list of persistence calls for one drop.
type plan struct {
	kind         Kind
	cross        bool
	boardID      primitive.ObjectID
	src, dst     primitive.ObjectID
	srcPositions []ordering.Position
	dstPositions []ordering.Position
	cardID       primitive.ObjectID
	index        int
}

// echo is what the server said after a plan ran.
type echo struct {
	columns  []models.Column
	src, dst primitive.ObjectID
	srcCards []models.Card
	dstCards []models.Card
	moved    *models.Card
}

func (pl *plan) run(ctx context.Context, api API) (echo, error) {
	var e echo
	var err error
	if pl.kind == ColumnItem {
		e.columns, err = api.ReorderColumns(ctx, pl.boardID, pl.srcPositions)
		return e, err
	}

	e.src = pl.src
	if e.srcCards, err = api.ReorderCards(ctx, pl.src, pl.srcPositions); err != nil {
		return e, fmt.Errorf("reorder source column: %w", err)
	}
	if !pl.cross {
		return e, nil
	}
	e.dst = pl.dst
	if e.dstCards, err = api.ReorderCards(ctx, pl.dst, pl.dstPositions); err != nil {
		return e, fmt.Errorf("reorder destination column: %w", err)
	}
	moved, err := api.MoveCard(ctx, pl.cardID, pl.dst, pl.index)
	if err != nil {
		return e, fmt.Errorf("move card: %w", err)
	}
	e.moved = &moved
	return e, nil
}

// apply merges the echo into b. Echoed scalar fields win; children that
// bulk responses do not carry (cards, comments) are kept from b.
func (e echo) apply(b *models.Board) {
	if e.columns != nil {
		byID := make(map[primitive.ObjectID]models.Column, len(e.columns))
		for _, c := range e.columns {
			byID[c.ID] = c
		}
		for i := range b.Columns {
			if s, ok := byID[b.Columns[i].ID]; ok {
				b.Columns[i].Order = s.Order
				b.Columns[i].Name = s.Name
			}
		}
		sort.SliceStable(b.Columns, func(i, j int) bool { return b.Columns[i].Order < b.Columns[j].Order })
		return
	}

	for i := range b.Columns {
		col := &b.Columns[i]
		switch col.ID {
		case e.src:
			col.Cards = mergeCards(col.Cards, e.srcCards)
		case e.dst:
			echoed := e.dstCards
			if e.moved != nil {
				echoed = append(append([]models.Card{}, echoed...), *e.moved)
			}
			col.Cards = mergeCards(col.Cards, echoed)
		}
	}
}

func mergeCards(local, echoed []models.Card) []models.Card {
	byID := make(map[primitive.ObjectID]models.Card, len(echoed))
	for _, c := range echoed {
		byID[c.ID] = c
	}
	out := make([]models.Card, len(local))
	for i, c := range local {
		if s, ok := byID[c.ID]; ok {
			c.Order = s.Order
			c.ColumnID = s.ColumnID
			c.Title = s.Title
			c.Description = s.Description
		}
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// arrange returns the items named by positions, in that order, with each
// item's order set by set. Items not named are dropped.
func arrange[T any](items []T, positions []ordering.Position, id func(T) primitive.ObjectID, set func(*T, int)) []T {
	byID := make(map[primitive.ObjectID]T, len(items))
	for _, it := range items {
		byID[id(it)] = it
	}
	out := make([]T, 0, len(positions))
	for _, p := range ordering.Sorted(positions) {
		it, ok := byID[p.ID]
		if !ok {
			continue
		}
		set(&it, p.Order)
		out = append(out, it)
	}
	return out
}

func columnIndex(cols []models.Column, id primitive.ObjectID) int {
	for i, c := range cols {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cardIndex(cards []models.Card, id primitive.ObjectID) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneBoard(b models.Board) models.Board {
	out := b
	out.Columns = make([]models.Column, len(b.Columns))
	for i, c := range b.Columns {
		c.Cards = append([]models.Card(nil), c.Cards...)
		for j := range c.Cards {
			c.Cards[j].Comments = append([]models.Comment(nil), c.Cards[j].Comments...)
		}
		out.Columns[i] = c
	}
	return out
}
