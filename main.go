package main

import "LrcSync/cmd"

func main() {
	cmd.Execute()
}
