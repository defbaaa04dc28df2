// cmd/kanbanctl/columns.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/kanban/internal/client/boardview"
	"github.com/urfave/cli/v2"
)

var cmdColumns = &cli.Command{
	Name:  "columns",
	Usage: "Add, rename, move and delete columns",
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "Append a column to a board",
			ArgsUsage: "<name>",
			Flags:     []cli.Flag{&cli.StringFlag{Name: "board", Required: true, Usage: "Board id"}},
			Action: func(c *cli.Context) error {
				boardID, err := idFlag(c, "board", "board")
				if err != nil {
					return err
				}
				col, err := newClient(c).CreateColumn(c.Context, boardID, strings.Join(c.Args().Slice(), " "))
				if err != nil {
					return err
				}
				return emit(c, col, func(w io.Writer) {
					fmt.Fprintf(w, "created column %s  %s at %d\n", col.ID.Hex(), col.Name, col.Order)
				})
			},
		},
		{
			Name:      "rename",
			Usage:     "Rename a column",
			ArgsUsage: "<column-id> <name>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "column")
				if err != nil {
					return err
				}
				col, err := newClient(c).RenameColumn(c.Context, id, strings.Join(c.Args().Tail(), " "))
				if err != nil {
					return err
				}
				return emit(c, col, func(w io.Writer) {
					fmt.Fprintf(w, "renamed column %s to %s\n", col.ID.Hex(), col.Name)
				})
			},
		},
		{
			Name:      "move",
			Usage:     "Move a column to a new position on its board",
			ArgsUsage: "<column-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "board", Required: true, Usage: "Board id"},
				&cli.IntFlag{Name: "index", Required: true, Usage: "Zero-based target position"},
			},
			Action: func(c *cli.Context) error {
				boardID, err := idFlag(c, "board", "board")
				if err != nil {
					return err
				}
				id, err := idArg(c, 0, "column")
				if err != nil {
					return err
				}
				view, err := boardview.Load(c.Context, newClient(c), boardID, newLogger(c))
				if err != nil {
					return err
				}
				if err := view.Begin(boardview.ColumnItem, id); err != nil {
					return err
				}
				if err := view.Drop(c.Context, &boardview.Destination{Index: c.Int("index")}); err != nil {
					return err
				}
				b := view.Board()
				return emit(c, b, func(w io.Writer) { printBoard(w, b) })
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete a column with its cards",
			ArgsUsage: "<column-id>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "column")
				if err != nil {
					return err
				}
				if err := newClient(c).DeleteColumn(c.Context, id); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "deleted column %s\n", id.Hex())
				return nil
			},
		},
	},
}
