package main

import "github.com/smartcharts/coursetrack-engine/cmd"

func main() {
	cmd.Execute()
}
