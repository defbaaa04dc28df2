// cmd/kanbanctl/admin.go
package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/kanban/internal/client"
	"github.com/urfave/cli/v2"
)

var cmdAdmin = &cli.Command{
	Name:  "admin",
	Usage: "Administrator commands",
	Subcommands: []*cli.Command{
		{
			Name:  "users",
			Usage: "List every user",
			Action: func(c *cli.Context) error {
				users, err := newClient(c).AllUsers(c.Context)
				if err != nil {
					return err
				}
				return emit(c, users, func(w io.Writer) {
					for _, u := range users {
						role := "user"
						if u.IsAdmin {
							role = "admin"
						}
						fmt.Fprintf(w, "%s  %-20s %-30s %s\n", u.ID.Hex(), u.Username, u.Email, role)
					}
				})
			},
		},
		{
			Name:  "audit",
			Usage: "Show the audit trail, newest first",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "category", Usage: "auth or admin"},
				&cli.StringFlag{Name: "type", Usage: "Event type, e.g. login_success"},
				&cli.StringFlag{Name: "user", Usage: "Only events about or by this user id"},
				&cli.IntFlag{Name: "limit", Value: 50},
				&cli.StringFlag{Name: "cursor", Usage: "Cursor printed by the previous page"},
			},
			Action: func(c *cli.Context) error {
				page, err := newClient(c).AuditLog(c.Context, client.AuditQuery{
					Category:  c.String("category"),
					EventType: c.String("type"),
					UserID:    c.String("user"),
					Limit:     c.Int("limit"),
					Cursor:    c.String("cursor"),
				})
				if err != nil {
					return err
				}
				return emit(c, page, func(w io.Writer) {
					for _, e := range page.Events {
						fmt.Fprintf(w, "%s  %-6s %-32s user=%s", e.CreatedAt.Format(time.RFC3339), e.Category, e.EventType, e.UserID)
						if e.ActorID != "" {
							fmt.Fprintf(w, " actor=%s", e.ActorID)
						}
						fmt.Fprintln(w)
					}
					if page.NextCursor != "" {
						fmt.Fprintf(w, "more: --cursor %s\n", page.NextCursor)
					}
				})
			},
		},
		{
			Name:      "delete-user",
			Usage:     "Delete a user and every board they own",
			ArgsUsage: "<user-id>",
			Action: func(c *cli.Context) error {
				id, err := idArg(c, 0, "user")
				if err != nil {
					return err
				}
				if err := newClient(c).DeleteUser(c.Context, id); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "deleted user %s\n", id.Hex())
				return nil
			},
		},
	},
}
