package main

import "github.com/oshokin/smart-alarm/cmd/alarm-clock/cmd"

func main() {
	cmd.Execute()
}
