package main

import "github.com/ewilliams-labs/mashability/internal/cli"

func main() {
	cli.Execute()
}
