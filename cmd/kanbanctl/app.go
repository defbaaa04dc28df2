// cmd/kanbanctl/app.go
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dalemusser/kanban/internal/client"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "server",
		Usage:   "Base URL of the kanban server",
		Value:   "http://localhost:8080",
		EnvVars: []string{"KANBAN_SERVER"},
	},
	&cli.StringFlag{
		Name:    "token",
		Usage:   "Bearer token (printed by login/register)",
		EnvVars: []string{"KANBAN_TOKEN"},
	},
	&cli.BoolFlag{
		Name:  "json",
		Usage: "Print raw JSON instead of text",
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log drag and drop reconciliation to stderr",
	},
}

// NewApp builds the command tree. Tests swap Writer to capture output.
func NewApp() *cli.App {
	return &cli.App{
		Name:  "kanbanctl",
		Usage: "Manage kanban boards from the command line",
		Flags: globalFlags,
		Commands: []*cli.Command{
			cmdRegister,
			cmdLogin,
			cmdBoards,
			cmdColumns,
			cmdCards,
			cmdComments,
			cmdAdmin,
		},
	}
}

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("server"), client.WithToken(c.String("token")))
}

// newLogger returns nil unless --verbose is set; boardview treats nil as a no-op logger.
func newLogger(c *cli.Context) *zap.Logger {
	if !c.Bool("verbose") {
		return nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil
	}
	return logger
}

// emit prints v as indented JSON when --json is set, otherwise calls text.
func emit(c *cli.Context, v any, text func(w io.Writer)) error {
	w := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

// idArg parses the n-th positional argument as an id.
func idArg(c *cli.Context, n int, what string) (primitive.ObjectID, error) {
	raw := c.Args().Get(n)
	if raw == "" {
		return primitive.NilObjectID, fmt.Errorf("missing %s id", what)
	}
	return parseID(raw, what)
}

func idFlag(c *cli.Context, name, what string) (primitive.ObjectID, error) {
	raw := c.String(name)
	if raw == "" {
		return primitive.NilObjectID, fmt.Errorf("--%s is required", name)
	}
	return parseID(raw, what)
}

func parseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}
