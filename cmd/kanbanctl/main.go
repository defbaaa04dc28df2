// Command kanbanctl drives the kanban API from a terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "kanbanctl:", err)
		os.Exit(1)
	}
}
