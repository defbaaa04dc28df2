package columnstore_test

import (
	"testing"

	columnstore "github.com/dalemusser/kanban/internal/app/store/columns"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListByBoard_SortedByOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := columnstore.New(db)

	owner := fx.CreateUser(ctx, "c@example.com")
	b := fx.CreateBoard(ctx, owner.ID, "B")
	second := fx.CreateColumnAt(ctx, b.ID, "second", 1)
	first := fx.CreateColumnAt(ctx, b.ID, "first", 0)

	cols, err := store.ListByBoard(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListByBoard failed: %v", err)
	}
	if len(cols) != 2 || cols[0].ID != first.ID || cols[1].ID != second.ID {
		t.Errorf("unexpected order: %+v", cols)
	}

	n, err := store.CountByBoard(ctx, b.ID)
	if err != nil || n != 2 {
		t.Errorf("CountByBoard: n=%d err=%v", n, err)
	}
}

func TestSetOrders_ScopedToBoard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := columnstore.New(db)

	owner := fx.CreateUser(ctx, "s@example.com")
	b := fx.CreateBoard(ctx, owner.ID, "B")
	other := fx.CreateBoard(ctx, owner.ID, "other")
	a := fx.CreateColumn(ctx, b.ID, "a")
	c := fx.CreateColumn(ctx, b.ID, "c")
	foreign := fx.CreateColumn(ctx, other.ID, "foreign")

	matched, err := store.SetOrders(ctx, b.ID, []ordering.Position{
		{ID: a.ID, Order: 1},
		{ID: c.ID, Order: 0},
		{ID: foreign.ID, Order: 7},
		{ID: primitive.NewObjectID(), Order: 3},
	})
	if err != nil {
		t.Fatalf("SetOrders failed: %v", err)
	}
	if matched != 2 {
		t.Errorf("matched: got %d, want 2", matched)
	}

	orders := fx.Orders(ctx, "columns", bson.M{})
	if orders[a.ID] != 1 || orders[c.ID] != 0 {
		t.Errorf("board orders not applied: %v", orders)
	}
	if orders[foreign.ID] != 0 {
		t.Errorf("foreign column was modified: %d", orders[foreign.ID])
	}
}

func TestDeleteByBoards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := columnstore.New(db)

	owner := fx.CreateUser(ctx, "d@example.com")
	b1 := fx.CreateBoard(ctx, owner.ID, "1")
	b2 := fx.CreateBoard(ctx, owner.ID, "2")
	fx.CreateColumn(ctx, b1.ID, "a")
	fx.CreateColumn(ctx, b1.ID, "b")
	keep := fx.CreateColumn(ctx, b2.ID, "c")

	ids, err := store.IDsByBoards(ctx, []primitive.ObjectID{b1.ID})
	if err != nil || len(ids) != 2 {
		t.Fatalf("IDsByBoards: ids=%v err=%v", ids, err)
	}

	n, err := store.DeleteByBoards(ctx, []primitive.ObjectID{b1.ID})
	if err != nil || n != 2 {
		t.Fatalf("DeleteByBoards: n=%d err=%v", n, err)
	}
	if _, err := store.GetByID(ctx, keep.ID); err != nil {
		t.Errorf("column on other board was deleted: %v", err)
	}

	n, err = store.DeleteByBoards(ctx, nil)
	if err != nil || n != 0 {
		t.Errorf("empty DeleteByBoards: n=%d err=%v", n, err)
	}
}
