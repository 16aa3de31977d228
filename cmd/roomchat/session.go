package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mapleins/community/internal/client"
)

func tokenPath(cctx *cli.Context) (string, error) {
	if p := cctx.String("token-file"); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".roomchat", "token"), nil
}

func loadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func saveToken(path, token string) error {
	if token == "" {
		err := os.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}

// newClient builds a client carrying the stored session.
func newClient(cctx *cli.Context) (*client.Client, string, error) {
	c, err := client.New(cctx.String("server"))
	if err != nil {
		return nil, "", err
	}

	path, err := tokenPath(cctx)
	if err != nil {
		return nil, "", err
	}
	token, err := loadToken(path)
	if err != nil {
		return nil, "", err
	}
	c.SetToken(token)

	return c, path, nil
}
