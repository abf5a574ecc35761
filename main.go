package main

import "github.com/guimove/placefit/cmd"

func main() {
	cmd.Execute()
}
