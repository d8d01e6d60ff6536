package main

import "waysfood-api/commands"

func main() {
	commands.Execute()
}
