package main

import (
	"github.com/luckynine/backend/internal/cli"
)

func main() {
	cli.Execute()
}
