// cmd/kanbanctl/cards.go
package main

import (
	"fmt"
	"io"

	"github.com/dalemusser/kanban/internal/client"
	"github.com/dalemusser/kanban/internal/client/boardview"
	"github.com/urfave/cli/v2"
)

var cmdCards = &cli.Command{
	Name:  "cards",
	Usage: "Add, edit, move and delete cards",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "Append a card to a column",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "column", Required: true, Usage: "Column id"},
				&cli.StringFlag{Name: "title", Required: true},
				&cli.StringFlag{Name: "description"},
			},
			Action: func(c *cli.Context) error {
				colID, err := idFlag(c, "column", "column")
				if err != nil {
					return err
				}
				card, err := newClient(c).CreateCard(c.Context, colID, c.String("title"), c.String("description"))
				if err != nil {
					return err
				}
				return emit(c, card, func(w io.Writer) {
					fmt.Fprintf(w, "created card %s  %s at %d\n", card.ID.Hex(), card.Title, card.Order)
				})
			},
		},
		{
			Name:      "edit",
			Usage:     "Change a card's title or description",
			ArgsUsage: "<card-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title"},
				&cli.StringFlag{Name: "description"},
			},
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "card")
				if err != nil {
					return err
				}
				var upd client.CardUpdate
				if c.IsSet("title") {
					v := c.String("title")
					upd.Title = &v
				}
				if c.IsSet("description") {
					v := c.String("description")
					upd.Description = &v
				}
				if upd.Title == nil && upd.Description == nil {
					return fmt.Errorf("nothing to change: pass --title or --description")
				}
				card, err := newClient(c).UpdateCard(c.Context, id, upd)
				if err != nil {
					return err
				}
				return emit(c, card, func(w io.Writer) {
					fmt.Fprintf(w, "updated card %s  %s\n", card.ID.Hex(), card.Title)
				})
			},
		},
		{
			Name:      "move",
			Usage:     "Move a card within its column or to another column",
			ArgsUsage: "<card-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "board", Required: true, Usage: "Board id"},
				&cli.StringFlag{Name: "to", Required: true, Usage: "Destination column id"},
				&cli.IntFlag{Name: "index", Usage: "Zero-based position in the destination column"},
			},
			Action: func(c *cli.Context) error {
				boardID, err := idFlag(c, "board", "board")
				if err != nil {
					return err
				}
				to, err := idFlag(c, "to", "column")
				if err != nil {
					return err
				}
				id, err := idArg(c, 0, "card")
				if err != nil {
					return err
				}
				view, err := boardview.Load(c.Context, newClient(c), boardID, newLogger(c))
				if err != nil {
					return err
				}
				if err := view.Begin(boardview.CardItem, id); err != nil {
					return err
				}
				if err := view.Drop(c.Context, &boardview.Destination{ContainerID: to, Index: c.Int("index")}); err != nil {
					return err
				}
				b := view.Board()
				return emit(c, b, func(w io.Writer) { printBoard(w, b) })
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete a card with its comments",
			ArgsUsage: "<card-id>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "card")
				if err != nil {
					return err
				}
				if err := newClient(c).DeleteCard(c.Context, id); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "deleted card %s\n", id.Hex())
				return nil
			},
		},
	},
}
