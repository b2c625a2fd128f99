package main

import "standbill_backend/cmd"

func main() {
	cmd.Execute()
}
