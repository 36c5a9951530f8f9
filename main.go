package main

import "wescape-backend/cmd"

func main() {
	cmd.Run()
}
