// Command chatdock is a terminal client for the clinic chatbot backend.
package main

import "github.com/berth-dev/chatdock/internal/cli"

func main() {
	cli.Execute()
}
