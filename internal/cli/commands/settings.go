package commands

import (
	"fmt"
	"strconv"

	"github.com/kutbudev/ctdp/internal/service"
	"github.com/urfave/cli/v2"
)

// NewSettingsCommand creates all subcommands for the 'settings' command group.
func NewSettingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show and change application settings",
		Action: func(c *cli.Context) error {
			return showSettings(c)
		},
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show current settings",
				Action: showSettings,
			},
			settingsSetCmd(),
		},
	}
}

func showSettings(c *cli.Context) error {
	return withService(func(svc *service.ChainService) error {
		settings, err := svc.GetSettings()
		if err != nil {
			fmt.Printf("Error getting settings: %v\n", err)
			return err
		}

		fmt.Printf("⚙️  Settings:\n")
		fmt.Printf("   session-duration: %d (seconds)\n", settings.DefaultSessionDuration)
		fmt.Printf("   break-duration:   %d (seconds)\n", settings.DefaultBreakDuration)
		fmt.Printf("   notifications:    %v\n", settings.EnableNotifications)
		fmt.Printf("   sounds:           %v\n", settings.EnableSounds)
		fmt.Printf("   strict-rules:     %v\n", settings.StrictRuleMode)
		fmt.Printf("   rule-updates:     %v\n", settings.AllowRuleUpdates)
		fmt.Printf("   theme:            %s\n", settings.Theme)
		fmt.Printf("   language:         %s\n", settings.Language)
		return nil
	})
}

func settingsSetCmd() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Change one setting",
		ArgsUsage: "<key> <value>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("key and value are required")
			}
			key := c.Args().Get(0)
			value := c.Args().Get(1)

			input, err := settingsInputFor(key, value)
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				return err
			}

			return withService(func(svc *service.ChainService) error {
				if _, err := svc.UpdateSettings(input); err != nil {
					fmt.Printf("Error updating settings: %v\n", err)
					return err
				}
				fmt.Printf("✅ %s set to %s\n", key, value)
				return nil
			})
		},
	}
}

func settingsInputFor(key, value string) (service.SettingsInput, error) {
	var input service.SettingsInput
	switch key {
	case "session-duration", "break-duration":
		n, err := strconv.Atoi(value)
		if err != nil {
			return input, fmt.Errorf("%s expects a number of seconds", key)
		}
		if key == "session-duration" {
			input.DefaultSessionDuration = &n
		} else {
			input.DefaultBreakDuration = &n
		}
	case "notifications", "sounds", "strict-rules", "rule-updates":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return input, fmt.Errorf("%s expects true or false", key)
		}
		switch key {
		case "notifications":
			input.EnableNotifications = &b
		case "sounds":
			input.EnableSounds = &b
		case "strict-rules":
			input.StrictRuleMode = &b
		case "rule-updates":
			input.AllowRuleUpdates = &b
		}
	case "theme":
		input.Theme = &value
	case "language":
		input.Language = &value
	default:
		return input, fmt.Errorf("unknown setting %q", key)
	}
	return input, nil
}
