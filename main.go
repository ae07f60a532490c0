package main

import "tagsmith/cmd"

func main() {
	cmd.Execute()
}
