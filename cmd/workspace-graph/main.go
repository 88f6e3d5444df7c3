package main

import "workspace-graph/internal/cli"

func main() {
	cli.Execute()
}
