package main

import "github.com/pscheid92/affinity/internal/cli"

func main() {
	cli.Execute()
}
