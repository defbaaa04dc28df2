// cmd/kanbanctl/boards.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/kanban/internal/domain/models"
	"github.com/urfave/cli/v2"
)

var cmdBoards = &cli.Command{
	Name:  "boards",
	Usage: "List, show, create and delete boards",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List your boards",
			Action: func(c *cli.Context) error {
				boards, err := newClient(c).ListBoards(c.Context)
				if err != nil {
					return err
				}
				return emit(c, boards, func(w io.Writer) {
					for _, b := range boards {
						fmt.Fprintf(w, "%s  %s  (%d columns)\n", b.ID.Hex(), b.Name, len(b.Columns))
					}
				})
			},
		},
		{
			Name:      "show",
			Usage:     "Print a board with its columns and cards",
			ArgsUsage: "<board-id>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "board")
				if err != nil {
					return err
				}
				b, err := newClient(c).GetBoard(c.Context, id)
				if err != nil {
					return err
				}
				return emit(c, b, func(w io.Writer) { printBoard(w, b) })
			},
		},
		{
			Name:      "create",
			Usage:     "Create a board",
			ArgsUsage: "<name>",
			Action: func(c *cli.Context) error {
				name := strings.Join(c.Args().Slice(), " ")
				b, err := newClient(c).CreateBoard(c.Context, name)
				if err != nil {
					return err
				}
				return emit(c, b, func(w io.Writer) {
					fmt.Fprintf(w, "created board %s  %s\n", b.ID.Hex(), b.Name)
				})
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete a board with everything on it",
			ArgsUsage: "<board-id>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "board")
				if err != nil {
					return err
				}
				if err := newClient(c).DeleteBoard(c.Context, id); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "deleted board %s\n", id.Hex())
				return nil
			},
		},
	},
}

func printBoard(w io.Writer, b models.Board) {
	fmt.Fprintf(w, "%s  (%s)\n", b.Name, b.ID.Hex())
	for _, col := range b.Columns {
		fmt.Fprintf(w, "  [%d] %s  (%s)\n", col.Order, col.Name, col.ID.Hex())
		for _, card := range col.Cards {
			fmt.Fprintf(w, "      %d. %s  (%s)", card.Order, card.Title, card.ID.Hex())
			if n := len(card.Comments); n > 0 {
				fmt.Fprintf(w, "  %d comment(s)", n)
			}
			fmt.Fprintln(w)
		}
	}
}
