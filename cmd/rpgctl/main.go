package main

import "github.com/mcoot/rpgroster-go/internal/cli"

func main() {
	cli.Execute()
}
