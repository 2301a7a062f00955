package main

import "pinboard/cmd/pinctl/commands"

func main() {
	commands.Execute()
}
