package main

import "github.com/studydesk/prio/cmd"

func main() {
	cmd.Execute()
}
