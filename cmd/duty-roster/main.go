package main

import "github.com/opsdesk/duty-roster/internal/cli"

func main() {
	cli.Execute()
}
