package main

import "github.com/twiced-technology-gmbh/planwatch/cmd"

func main() {
	cmd.Execute()
}
