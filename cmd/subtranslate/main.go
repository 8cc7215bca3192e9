package main

import "github.com/devbush/subtranslate/internal/adapters/cli"

func main() {
	cli.Execute()
}
