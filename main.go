package main

import (
	"context"
	"fmt"
	"os"

	"github.com/estudai/estudai/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "estudai:", err)
		os.Exit(1)
	}
}
