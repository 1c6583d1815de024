// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"flag"
	"os"
)

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "configuration file (.toml, .yaml)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	c, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
