package cardstore_test

import (
	"errors"
	"testing"

	cardstore "github.com/dalemusser/kanban/internal/app/store/cards"
	"github.com/dalemusser/kanban/internal/domain/ordering"
	"github.com/dalemusser/kanban/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := cardstore.New(db)

	bt := fx.CreateBoardTree(ctx, "cards@example.com")

	c, err := store.Create(ctx, bt.Todo.ID, "W", "details", 3)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cards, err := store.ListByColumn(ctx, bt.Todo.ID)
	if err != nil {
		t.Fatalf("ListByColumn failed: %v", err)
	}
	want := []primitive.ObjectID{bt.X.ID, bt.Y.ID, bt.Z.ID, c.ID}
	if len(cards) != len(want) {
		t.Fatalf("expected %d cards, got %d", len(want), len(cards))
	}
	for i, id := range want {
		if cards[i].ID != id {
			t.Errorf("position %d: got %v, want %v", i, cards[i].ID, id)
		}
	}

	all, err := store.ListByColumns(ctx, []primitive.ObjectID{bt.Todo.ID, bt.Done.ID})
	if err != nil || len(all) != 5 {
		t.Errorf("ListByColumns: len=%d err=%v", len(all), err)
	}
}

func TestApply_PartialUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := cardstore.New(db)

	bt := fx.CreateBoardTree(ctx, "apply@example.com")
	desc := "now with words"

	got, err := store.Apply(ctx, bt.X.ID, cardstore.Update{Description: &desc})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got.Title != "X" || got.Description != desc {
		t.Errorf("got title=%q desc=%q", got.Title, got.Description)
	}

	_, err = store.Apply(ctx, primitive.NewObjectID(), cardstore.Update{Description: &desc})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestSetOrders_IgnoresCardsInOtherColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := cardstore.New(db)

	bt := fx.CreateBoardTree(ctx, "order@example.com")

	matched, err := store.SetOrders(ctx, bt.Todo.ID, []ordering.Position{
		{ID: bt.Z.ID, Order: 0},
		{ID: bt.X.ID, Order: 2},
		{ID: bt.D.ID, Order: 5},
	})
	if err != nil {
		t.Fatalf("SetOrders failed: %v", err)
	}
	if matched != 2 {
		t.Errorf("matched: got %d, want 2", matched)
	}

	orders := fx.Orders(ctx, "cards", bson.M{})
	if orders[bt.Z.ID] != 0 || orders[bt.X.ID] != 2 || orders[bt.Y.ID] != 1 {
		t.Errorf("unexpected orders: %v", orders)
	}
	if orders[bt.D.ID] != 0 {
		t.Errorf("card in other column changed: %d", orders[bt.D.ID])
	}
}

func TestMoveTo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := cardstore.New(db)

	bt := fx.CreateBoardTree(ctx, "move@example.com")

	if err := store.MoveTo(ctx, bt.X.ID, bt.Done.ID, 0); err != nil {
		t.Fatalf("MoveTo failed: %v", err)
	}
	got, err := store.GetByID(ctx, bt.X.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ColumnID != bt.Done.ID || got.Order != 0 {
		t.Errorf("got column=%v order=%d", got.ColumnID, got.Order)
	}

	err = store.MoveTo(ctx, primitive.NewObjectID(), bt.Done.ID, 0)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestDeleteByColumns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := cardstore.New(db)

	bt := fx.CreateBoardTree(ctx, "del@example.com")

	n, err := store.DeleteByColumns(ctx, []primitive.ObjectID{bt.Todo.ID})
	if err != nil || n != 3 {
		t.Fatalf("DeleteByColumns: n=%d err=%v", n, err)
	}
	if c, _ := store.CountByColumn(ctx, bt.Done.ID); c != 1 {
		t.Errorf("Done count: got %d, want 1", c)
	}
}
