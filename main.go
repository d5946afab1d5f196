package main

import "github.com/naka-gawa/pr-weekly-report/cmd"

func main() {
	cmd.Execute()
}
