package main

import (
	"github.com/painelhub/painelcore/internal/cli"
	"github.com/painelhub/painelcore/internal/common/logtrace"
)

func init() {
	logtrace.InitConsoleLogger()
}

func main() {
	cli.Execute()
}
