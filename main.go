package main

import (
	"os"

	"github.com/sirupsen/logrus"

	_ "github.com/ulrichard/uttesla/cmd/autostart"
	_ "github.com/ulrichard/uttesla/cmd/charge"
	_ "github.com/ulrichard/uttesla/cmd/climate"
	_ "github.com/ulrichard/uttesla/cmd/config"
	_ "github.com/ulrichard/uttesla/cmd/command"
	_ "github.com/ulrichard/uttesla/cmd/doors"
	_ "github.com/ulrichard/uttesla/cmd/list"
	_ "github.com/ulrichard/uttesla/cmd/login"
	"github.com/ulrichard/uttesla/cmd/root"
	_ "github.com/ulrichard/uttesla/cmd/serve"
	_ "github.com/ulrichard/uttesla/cmd/snapshot"
	_ "github.com/ulrichard/uttesla/cmd/token"
	_ "github.com/ulrichard/uttesla/cmd/version"
	_ "github.com/ulrichard/uttesla/cmd/watch"
)

func main() {
	if err := root.Execute(); err != nil {
		root.PrintEventLog()
		logrus.Error(err)
		os.Exit(1)
	}
}
