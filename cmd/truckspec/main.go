package main

import "truckspec/internal/cli"

func main() {
	cli.Execute()
}
