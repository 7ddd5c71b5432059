package main

import "github.com/oshokin/smart-alarm/cmd/alarm-clock-server/cmd"

func main() {
	cmd.Execute()
}
