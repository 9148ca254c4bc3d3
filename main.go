package main

import "chordprep/cmd"

func main() {
	cmd.Execute()
}
