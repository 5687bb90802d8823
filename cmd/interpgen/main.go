// Interpgen expands f-strings in Go source files. It is meant to be run by
// go generate:
//
//	//go:generate go run github.com/ardnew/interp/cmd/interpgen
//
// With no arguments it expands the file named by $GOFILE. Arguments and
// flags are those of "interp gen".
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/interp/cli"
	"github.com/ardnew/interp/log"
)

func main() {
	args := append([]string{"gen"}, os.Args[1:]...)

	if err := cli.Run(context.Background(), os.Exit, args...); err != nil {
		log.Error("generate failed", slog.Any("error", err))
		os.Exit(1)
	}
}
