// cmd/kanbanctl/comments.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
)

var cmdComments = &cli.Command{
	Name:  "comments",
	Usage: "Add, edit and delete card comments",
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "Comment on a card",
			ArgsUsage: "<text>",
			Flags:     []cli.Flag{&cli.StringFlag{Name: "card", Required: true, Usage: "Card id"}},
			Action: func(c *cli.Context) error {
				cardID, err := idFlag(c, "card", "card")
				if err != nil {
					return err
				}
				cm, err := newClient(c).AddComment(c.Context, cardID, strings.Join(c.Args().Slice(), " "))
				if err != nil {
					return err
				}
				return emit(c, cm, func(w io.Writer) {
					fmt.Fprintf(w, "added comment %s\n", cm.ID.Hex())
				})
			},
		},
		{
			Name:      "edit",
			Usage:     "Replace a comment's text",
			ArgsUsage: "<comment-id> <text>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "comment")
				if err != nil {
					return err
				}
				cm, err := newClient(c).EditComment(c.Context, id, strings.Join(c.Args().Tail(), " "))
				if err != nil {
					return err
				}
				return emit(c, cm, func(w io.Writer) {
					fmt.Fprintf(w, "updated comment %s\n", cm.ID.Hex())
				})
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete a comment",
			ArgsUsage: "<comment-id>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "comment")
				if err != nil {
					return err
				}
				if err := newClient(c).DeleteComment(c.Context, id); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "deleted comment %s\n", id.Hex())
				return nil
			},
		},
	},
}
