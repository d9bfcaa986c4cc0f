package main

import "github.com/krishkalaria12/snap-upload/cmd"

func main() {
	cmd.Execute()
}
