// cmd/kanbanctl/auth.go
package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

var cmdRegister = &cli.Command{
	Name:  "register",
	Usage: "Create an account and print its token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "username", Required: true},
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"KANBAN_PASSWORD"}},
	},
	Action: func(c *cli.Context) error {
		res, err := newClient(c).Register(c.Context, c.String("username"), c.String("email"), c.String("password"))
		if err != nil {
			return err
		}
		return emit(c, res, func(w io.Writer) {
			fmt.Fprintf(w, "registered %s (%s)\n", res.User.Username, res.User.ID.Hex())
			fmt.Fprintf(w, "export KANBAN_TOKEN=%s\n", res.Token)
		})
	},
}

var cmdLogin = &cli.Command{
	Name:  "login",
	Usage: "Sign in and print a token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"KANBAN_PASSWORD"}},
	},
	Action: func(c *cli.Context) error {
		res, err := newClient(c).Login(c.Context, c.String("email"), c.String("password"))
		if err != nil {
			return err
		}
		return emit(c, res, func(w io.Writer) {
			fmt.Fprintf(w, "export KANBAN_TOKEN=%s\n", res.Token)
		})
	},
}
