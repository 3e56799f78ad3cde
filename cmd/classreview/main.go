package main

import "github.com/polmat77/classreviewmaster/cmd/classreview/cmd"

func main() {
	cmd.Execute()
}
