package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kutbudev/ctdp/internal/service"
	"github.com/urfave/cli/v2"
)

// NewContextCommand creates all subcommands for the 'context' command group.
func NewContextCommand() *cli.Command {
	return &cli.Command{
		Name:  "context",
		Usage: "Manage sacred contexts",
		Action: func(c *cli.Context) error {
			return listContexts(c)
		},
		Subcommands: []*cli.Command{
			contextListCmd(),
			contextShowCmd(),
			contextCreateCmd(),
			contextEditCmd(),
			contextDeleteCmd(),
			contextRulesCmd(),
		},
	}
}

func contextListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Usage:   "List contexts with their active chains",
		Aliases: []string{"ls"},
		Action:  listContexts,
	}
}

func listContexts(c *cli.Context) error {
	return withService(func(svc *service.ChainService) error {
		contexts, err := svc.GetContextsWithActiveChains()
		if err != nil {
			fmt.Printf("Error listing contexts: %v\n", err)
			return err
		}

		if len(contexts) == 0 {
			fmt.Println("No contexts yet.")
			fmt.Println("💡 Use 'ctdp context create <name>' to create one.")
			return nil
		}

		fmt.Printf("📋 Contexts (%d):\n\n", len(contexts))
		for _, ctx := range contexts {
			icon := ctx.Icon
			if icon == "" {
				icon = "•"
			}
			fmt.Printf("%s %s (ID: %s)\n", icon, ctx.Name, ctx.ID)
			if ctx.Description != "" {
				fmt.Printf("   %s\n", truncateString(ctx.Description, 70))
			}
			if ctx.ActiveChain != nil {
				fmt.Printf("   🔗 Active chain #%d, total focus %s\n",
					ctx.ActiveChain.Counter, formatSeconds(ctx.ActiveChain.TotalDuration))
			} else {
				fmt.Printf("   No active chain\n")
			}
			fmt.Println()
		}
		return nil
	})
}

func contextShowCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a context with its full chain history",
		ArgsUsage: "<context-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("context ID is required")
			}
			contextID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				context, err := svc.GetContextWithAllChains(contextID)
				if err != nil {
					fmt.Printf("Error getting context: %v\n", err)
					return err
				}

				icon := context.Icon
				if icon == "" {
					icon = "•"
				}
				fmt.Printf("%s %s (ID: %s)\n", icon, context.Name, context.ID)
				if context.Description != "" {
					fmt.Printf("   %s\n", context.Description)
				}
				rules := context.ParseRules()
				if len(rules.Items) > 0 {
					fmt.Printf("\n📜 Rules:\n")
					for _, item := range rules.Items {
						fmt.Printf("   • %s\n", item)
					}
				}
				if rules.TriggerAction != "" {
					fmt.Printf("   Trigger: %s\n", rules.TriggerAction)
				}

				fmt.Printf("\n🔗 Chains (%d):\n", len(context.Chains))
				for _, chain := range context.Chains {
					marker := "  "
					if !chain.Status.Terminal() {
						marker = "▶ "
					}
					fmt.Printf("%s#%d  %s  sessions worth %s  (ID: %s)\n",
						marker, chain.Counter, chain.Status, formatSeconds(chain.TotalDuration), shortID(chain.ID))
				}
				return nil
			})
		},
	}
}

func contextCreateCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new sacred context",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Context description"},
			&cli.StringFlag{Name: "icon", Usage: "Display icon (emoji)"},
			&cli.StringFlag{Name: "color", Usage: "Display color (hex)"},
			&cli.StringSliceFlag{Name: "rule", Aliases: []string{"r"}, Usage: "Discipline rule (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("context name is required")
			}
			name := strings.Join(c.Args().Slice(), " ")

			return withService(func(svc *service.ChainService) error {
				input := service.ContextInput{Name: &name}
				if v := c.String("description"); v != "" {
					input.Description = &v
				}
				if v := c.String("icon"); v != "" {
					input.Icon = &v
				}
				if v := c.String("color"); v != "" {
					input.Color = &v
				}
				if rules := c.StringSlice("rule"); len(rules) > 0 {
					input.Rules = map[string]any{"items": rules}
				}

				context, err := svc.CreateSacredContext(input)
				if err != nil {
					fmt.Printf("Error creating context: %v\n", err)
					return err
				}

				fmt.Printf("✅ Context '%s' created\n", context.Name)
				fmt.Printf("   ID: %s\n", context.ID)
				return nil
			})
		},
	}
}

func contextEditCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Update context fields",
		ArgsUsage: "<context-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "New name"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
			&cli.StringFlag{Name: "icon", Usage: "New icon"},
			&cli.StringFlag{Name: "color", Usage: "New color"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("context ID is required")
			}
			contextID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				var input service.ContextInput
				if v := c.String("name"); v != "" {
					input.Name = &v
				}
				if v := c.String("description"); v != "" {
					input.Description = &v
				}
				if v := c.String("icon"); v != "" {
					input.Icon = &v
				}
				if v := c.String("color"); v != "" {
					input.Color = &v
				}

				context, err := svc.UpdateSacredContext(contextID, input)
				if err != nil {
					fmt.Printf("Error updating context: %v\n", err)
					return err
				}
				fmt.Printf("✅ Context '%s' updated\n", context.Name)
				return nil
			})
		},
	}
}

func contextDeleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a context and all its history",
		ArgsUsage: "<context-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("context ID is required")
			}
			contextID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				if err := svc.DeleteSacredContext(contextID); err != nil {
					if errors.Is(err, service.ErrContextHasActiveChain) {
						fmt.Println("❌ Context has an active chain.")
						fmt.Println("💡 Break or archive the chain first, then delete the context.")
						return err
					}
					fmt.Printf("Error deleting context: %v\n", err)
					return err
				}
				fmt.Printf("🗑️  Context %s deleted\n", contextID)
				return nil
			})
		},
	}
}

func contextRulesCmd() *cli.Command {
	return &cli.Command{
		Name:      "rules",
		Usage:     "Replace the context's exception rules",
		ArgsUsage: "<context-id> <rule>...",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("context ID is required")
			}
			contextID := c.Args().First()
			items := c.Args().Tail()

			return withService(func(svc *service.ChainService) error {
				context, err := svc.UpdateExceptionRules(contextID, items)
				if err != nil {
					fmt.Printf("Error updating rules: %v\n", err)
					return err
				}
				rules := context.ParseRules()
				fmt.Printf("✅ Rules for '%s' updated (%d items)\n", context.Name, len(rules.Items))
				for _, item := range rules.Items {
					fmt.Printf("   • %s\n", item)
				}
				return nil
			})
		},
	}
}
