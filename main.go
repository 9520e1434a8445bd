package main

import "github.com/bookshelf/bookshelf/cmd"

func main() {
	cmd.Execute()
}
