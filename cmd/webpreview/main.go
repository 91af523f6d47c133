package main

import "webpreview/internal/cli"

func main() {
	cli.Execute()
}
