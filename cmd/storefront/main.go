package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shashiranjanraj/storefront/pkg/app"
)

func main() {
	if err := app.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
