// Command fatshell is the interactive shell spec.md §4.6/§6 describes:
// a REPL over a single mounted volume, plus a non-interactive "load
// script" mode for scripted runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silhavyj/FAT32/volume"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatshell: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var scriptPath string

	root := &cobra.Command{
		Use:   "fatshell",
		Short: "Mount and interact with a FAT-style single-volume filesystem image",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := volume.Config{
				DiskPath:    viper.GetString("disk"),
				ClusterSize: viper.GetInt("cluster-size"),
				DiskSize:    viper.GetInt64("disk-size"),
			}
			vol, err := volume.Mount(config)
			if err != nil {
				return err
			}

			shell := NewShell(vol, os.Stdin, os.Stdout)
			if scriptPath != "" {
				return shell.RunScript(scriptPath)
			}
			return shell.RunInteractive()
		},
	}

	flags := root.PersistentFlags()
	flags.String("disk", volume.DefaultConfig().DiskPath, "backing disk image path")
	flags.Int("cluster-size", volume.DefaultConfig().ClusterSize, "cluster size in bytes")
	flags.Int64("disk-size", volume.DefaultConfig().DiskSize, "disk size in bytes, used only when formatting")
	root.Flags().StringVar(&scriptPath, "script", "", "run commands from a script file instead of an interactive prompt")

	viper.BindPFlag("disk", flags.Lookup("disk"))
	viper.BindPFlag("cluster-size", flags.Lookup("cluster-size"))
	viper.BindPFlag("disk-size", flags.Lookup("disk-size"))
	viper.SetEnvPrefix("FATFS")
	viper.AutomaticEnv()
	viper.SetConfigName(".fatfs")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig()

	return root
}
