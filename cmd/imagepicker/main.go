package main

import "github.com/SwanFlutter/image-picker-master/cmd/imagepicker/commands"

func main() {
	commands.Execute()
}
