package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"

	milcubes "github.com/eWloYW8/ZJUMilCubesHelper"
)

// getSession resolves the configured login method and establishes an
// authenticated session. Cookies take precedence over credentials; a
// username without a password triggers an interactive prompt.
func getSession(ctx context.Context) (*milcubes.Session, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	var opts []milcubes.Option
	if cfg.BaseURL != "" {
		opts = append(opts, milcubes.WithBaseURL(cfg.BaseURL))
	}

	switch {
	case cfg.CookiesFile != "":
		raw, err := os.ReadFile(filepath.Clean(cfg.CookiesFile))
		if err != nil {
			return nil, fmt.Errorf("read cookies file: %w", err)
		}
		return milcubes.FromCookiesJSON(ctx, raw, opts...)

	case cfg.Username != "":
		password := cfg.Password
		if password == "" {
			prompt := promptui.Prompt{
				Label: "Password",
				Mask:  '*',
			}
			password, err = prompt.Run()
			if err != nil {
				return nil, handlePromptError(err)
			}
		}
		return milcubes.FromCredentials(ctx, cfg.Username, password, opts...)

	default:
		return nil, milcubes.ErrNoLoginMethod
	}
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
