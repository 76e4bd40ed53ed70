package main

import "github.com/openrpa/botkit/internal/cli"

func main() {
	cli.Execute()
}
