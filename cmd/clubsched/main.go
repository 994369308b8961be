package main

import "github.com/example/club-scheduler/cmd"

func main() {
	cmd.Execute()
}
