package main

import (
	"os"

	"github.com/joseph-ayodele/order-assistant/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
