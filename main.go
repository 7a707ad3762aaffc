package main

import "coursecast/cmd"

func main() {
	cmd.Execute()
}
