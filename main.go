package main

import "github.com/strrl/agent-share/cmd/agent-share/commands"

func main() {
	commands.Execute()
}
