package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/docpipe/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and generate configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with all defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if err := config.GenerateDefaultConfigFile(file); err != nil {
			return err
		}
		if file == "" {
			file = "docpipe.yaml"
		}
		fmt.Printf("Wrote default configuration to %s\n", file)
		return nil
	},
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show where configuration files are searched",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range config.GetConfigSearchPaths() {
			fmt.Println(p)
		}
		if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
			fmt.Printf("\nActive config file: %s\n", used)
		}
	},
}

func init() {
	configInitCmd.Flags().String("file", "", "output file (default docpipe.yaml)")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathsCmd)
	rootCmd.AddCommand(configCmd)
}
