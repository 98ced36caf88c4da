package main

import "github.com/iksnae/halumem/cmd"

func main() {
	cmd.Execute()
}
