package main

import "github.com/shandysiswandi/goflightscore/internal/cli"

func main() {
	cli.Execute()
}
