package main

import "dclinabox/internal/cli"

func main() {
	cli.Execute()
}
