package main

import "github.com/adrianmross/region-select/internal/cmd"

func main() {
	cmd.ExecuteDaemon()
}
