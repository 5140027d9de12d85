package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nickgarreis/superlane-sub004/internal/config"
)

func handleConfig(args []string) int {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	var err error
	switch sub {
	case "path":
		var path string
		if path, err = config.GetUserConfigPath(); err == nil {
			fmt.Println(path)
		}
	case "init":
		err = initConfig(os.Stdout)
	case "show":
		err = showConfig(os.Stdout)
	default:
		err = fmt.Errorf("unknown config command %q (want path, init or show)", sub)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// initConfig writes the default config.toml unless one exists
func initConfig(w io.Writer) error {
	path, err := config.GetUserConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.SaveUserConfig(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Wrote %s\n", successSymbol, path)
	return nil
}

// showConfig prints the effective configuration as TOML
func showConfig(w io.Writer) error {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		return err
	}
	effective := *cfg
	effective.Search = config.GetSearchSettings()
	effective.Recents = config.GetRecentsSettings()
	effective.Workspace = config.GetWorkspaceSettings()
	effective.Theme = config.GetTheme()
	return toml.NewEncoder(w).Encode(effective)
}
