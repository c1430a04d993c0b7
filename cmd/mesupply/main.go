package main

import "github.com/multielectric/mesupply/internal/cmd"

func main() {
	cmd.Execute()
}
