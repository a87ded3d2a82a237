package main

import "github.com/agentic-research/jqenum/cmd"

func main() {
	cmd.Execute()
}
