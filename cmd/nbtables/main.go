package main

import "github.com/nautobot/nautobot-sub011/internal/cli"

func main() {
	cli.Execute()
}
