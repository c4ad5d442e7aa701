package commands

import (
	"fmt"

	"github.com/kutbudev/ctdp/internal/service"
	"github.com/urfave/cli/v2"
)

// NewTagCommand creates all subcommands for the 'tag' command group.
func NewTagCommand() *cli.Command {
	return &cli.Command{
		Name:  "tag",
		Usage: "Manage session tags",
		Action: func(c *cli.Context) error {
			return listTags(c)
		},
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "List all tags",
				Aliases: []string{"ls"},
				Action:  listTags,
			},
			tagCreateCmd(),
		},
	}
}

func listTags(c *cli.Context) error {
	return withService(func(svc *service.ChainService) error {
		tags, err := svc.GetAllTags()
		if err != nil {
			fmt.Printf("Error listing tags: %v\n", err)
			return err
		}

		if len(tags) == 0 {
			fmt.Println("No tags yet.")
			return nil
		}

		fmt.Printf("🏷️  Tags (%d):\n", len(tags))
		for _, tag := range tags {
			fmt.Printf("   • %s (%s)\n", tag.Name, tag.Color)
		}
		return nil
	})
}

func tagCreateCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a tag, or recolor an existing one",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Usage: "Display color (hex)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("tag name is required")
			}
			return withService(func(svc *service.ChainService) error {
				tag, err := svc.CreateTag(c.Args().First(), c.String("color"))
				if err != nil {
					fmt.Printf("Error creating tag: %v\n", err)
					return err
				}
				fmt.Printf("✅ Tag '%s' ready (%s)\n", tag.Name, tag.Color)
				return nil
			})
		},
	}
}
