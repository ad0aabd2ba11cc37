/*
Package cmd implements the command-line interface for ghops, a consolidated
GitHub MCP server. It provides the root command and the serve command.
*/
package cmd

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

/*
Embed a mini filesystem into the binary to hold the default config file.
This will be written to the home directory of the user running the service,
which allows a developer to easily override the config file.
*/
//go:embed cfg/*
var embedded embed.FS

var (
	projectName = "ghops"
	cfgFile     string
	githubToken string

	rootCmd = &cobra.Command{
		Use:   "ghops",
		Short: "A consolidated GitHub MCP server",
		Long:  longRoot,
	}
)

/*
Execute is the main entry point for the ghops CLI. It initializes the root
command and executes it.
*/
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yml",
		"config file (default is $HOME/."+projectName+"/config.yml)",
	)

	rootCmd.PersistentFlags().StringVar(
		&githubToken,
		"github-token",
		"",
		"GitHub token, overrides github.token from the config file",
	)
}

/*
initConfig writes the default config file to the user's home directory if it
doesn't exist yet, and then reads the config file from there.
*/
func initConfig() {
	var err error

	if err = writeConfig(); err != nil {
		log.Fatal(err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	home, _ := os.UserHomeDir()
	viper.AddConfigPath(home + "/." + projectName)

	if err = viper.ReadInConfig(); err != nil {
		log.Fatal(err)
		return
	}

	if githubToken != "" {
		viper.Set("github.token", githubToken)
	}
}

/*
writeConfig writes the default config file to the user's home directory.
*/
func writeConfig() (err error) {
	var (
		home, _ = os.UserHomeDir()
		fh      fs.File
		buf     bytes.Buffer
	)

	configDir := home + "/." + projectName
	if !checkFileExists(configDir) {
		if err = os.MkdirAll(configDir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	for _, file := range []string{cfgFile} {
		fullPath := configDir + "/" + file

		if checkFileExists(fullPath) {
			continue
		}

		if fh, err = embedded.Open("cfg/" + file); err != nil {
			return fmt.Errorf("failed to open embedded config file: %w", err)
		}

		if _, err = io.Copy(&buf, fh); err != nil {
			fh.Close()
			return fmt.Errorf("failed to read embedded config file: %w", err)
		}

		if err = os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			fh.Close()
			return fmt.Errorf("failed to write config file: %w", err)
		}

		log.Println("wrote config file to", fullPath)
		buf.Reset()
		fh.Close()
	}

	return nil
}

func checkFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, os.ErrNotExist)
}

var longRoot = `
ghops exposes consolidated GitHub tools over the Model Context Protocol:
one schema-validated tool per domain (repositories, issues, pull requests,
branches, releases, actions, search) instead of one tool per REST endpoint.
`
