// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     cmd
// Description: List audio devices
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicedesk/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices",
	Long:  "List the audio input and output devices PortAudio can see. Use a device name as audio.input_device in the config file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := audio.ListDevices()
		if err != nil {
			printError("listing devices", err)
			return err
		}

		fmt.Println("Input devices:")
		for _, dev := range devices {
			if dev.MaxInputChannels == 0 {
				continue
			}
			marker := " "
			if dev.IsDefaultInput {
				marker = "*"
			}
			fmt.Printf("  %s %s (%d ch, %.0f Hz)\n", marker, dev.Name, dev.MaxInputChannels, dev.DefaultSampleRate)
		}

		fmt.Println("\nOutput devices:")
		for _, dev := range devices {
			if dev.MaxOutputChannels == 0 {
				continue
			}
			marker := " "
			if dev.IsDefaultOutput {
				marker = "*"
			}
			fmt.Printf("  %s %s (%d ch, %.0f Hz)\n", marker, dev.Name, dev.MaxOutputChannels, dev.DefaultSampleRate)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
