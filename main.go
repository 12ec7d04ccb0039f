package main

import "github.com/L4er70/ContactBook/cmd"

func main() {
	cmd.Execute()
}
