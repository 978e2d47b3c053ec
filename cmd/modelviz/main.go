package main

import (
	"modelviz.dev/modelviz/internal/cmd"
)

func main() {
	cmd.Execute()
}
