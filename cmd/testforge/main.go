package main

import "github.com/mvp-joe/testforge/internal/cli"

func main() {
	cli.Execute()
}
