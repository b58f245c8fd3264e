package main

import "askdoc/cmd"

func main() {
	cmd.Execute()
}
