package main

import "eventdesk/cmd"

func main() {
	cmd.Execute()
}
