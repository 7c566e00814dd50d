package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucidpix/mediacodec/config"
	"github.com/lucidpix/mediacodec/logging"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "mediacodec",
		Short: "JPEG codec, resize, and rotate CLI",
		Long: "mediacodec decodes and encodes baseline and progressive JPEG,\n" +
			"and resizes or rotates decoded images with the resize and\n" +
			"rotate packages' resampling kernels.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./mediacodec.yaml)")
	if err := config.BindFlags(root.PersistentFlags(), v); err != nil {
		panic(err) // flag registration failure is a programming error, not a runtime one
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
		} else {
			v.SetConfigName("mediacodec")
			v.AddConfigPath(".")
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
				return err
			}
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, MaxSizeMB: cfg.LogMaxMB})
		cmd.SetContext(withAppState(cmd.Context(), cfg, logger))
		return nil
	}

	root.AddCommand(newDecodeCmd(), newEncodeCmd(), newResizeCmd(), newRotateCmd(), newInfoCmd())
	return root
}
