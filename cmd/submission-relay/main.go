package main

import "github.com/aliqulovx561-ai/writing-set-two/internal/cli"

func main() {
	cli.Execute()
}
