package main

import "github.com/Rorical/TermTwin/cmd"

func main() {
	cmd.Execute()
}
