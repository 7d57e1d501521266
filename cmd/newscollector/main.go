package main

import "newscollector/internal/cli"

func main() {
	cli.Execute()
}
