package main

import "github.com/KaramelBytes/moviedash/cmd"

func main() {
	cmd.Execute()
}
