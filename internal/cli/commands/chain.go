package commands

import (
	"errors"
	"fmt"

	"github.com/kutbudev/ctdp/internal/service"
	"github.com/urfave/cli/v2"
)

// NewChainCommand creates all subcommands for the 'chain' command group.
func NewChainCommand() *cli.Command {
	return &cli.Command{
		Name:  "chain",
		Usage: "Manage main chains (start sessions, record results)",
		Subcommands: []*cli.Command{
			chainStartCmd(),
			chainDoneCmd(),
			chainBreakCmd(),
			chainArchiveCmd(),
			chainPauseCmd(),
			chainResumeCmd(),
			chainRenameCmd(),
			chainHistoryCmd(),
		},
	}
}

func chainStartCmd() *cli.Command {
	return &cli.Command{
		Name:      "start",
		Usage:     "Start a session on a context (creates the chain if needed)",
		ArgsUsage: "<context-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Task title for this session"},
			&cli.StringSliceFlag{Name: "tag", Usage: "Session tag (repeatable)"},
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Expected duration in minutes"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("context ID is required")
			}
			contextID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				var taskInfo *service.TaskInfo
				if c.String("title") != "" || len(c.StringSlice("tag")) > 0 {
					taskInfo = &service.TaskInfo{
						Title:            c.String("title"),
						Tags:             c.StringSlice("tag"),
						ExpectedDuration: c.Int("duration") * 60,
					}
				}

				result, err := svc.StartOrContinueChain(contextID, taskInfo)
				if err != nil {
					fmt.Printf("Error starting chain: %v\n", err)
					return err
				}

				chain := result.Chain
				if result.IsNewChain {
					fmt.Printf("🔗 New chain started for '%s'\n", chain.Context.Name)
				} else {
					fmt.Printf("▶️  Continuing chain #%d on '%s'\n", chain.Counter, chain.Context.Name)
				}
				fmt.Printf("   Chain ID: %s\n", chain.ID)
				if taskInfo != nil && taskInfo.Title != "" {
					fmt.Printf("   Task: %s\n", taskInfo.Title)
				}
				return nil
			})
		},
	}
}

func chainDoneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Record a completed session and grow the chain",
		ArgsUsage: "<chain-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Session duration in minutes", Required: true},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Session title"},
			&cli.StringSliceFlag{Name: "tag", Usage: "Session tag (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("chain ID is required")
			}
			chainID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				chain, err := svc.IncrementChain(chainID, service.IncrementInput{
					Duration: c.Int("duration") * 60,
					Title:    c.String("title"),
					Tags:     c.StringSlice("tag"),
				})
				if err != nil {
					if errors.Is(err, service.ErrChainNotActive) {
						fmt.Println("❌ Chain is not active anymore.")
						return err
					}
					fmt.Printf("Error completing session: %v\n", err)
					return err
				}

				fmt.Printf("✅ Session complete, chain grows to #%d\n", chain.Counter)
				fmt.Printf("   Total focus: %s  Longest session: %s\n",
					formatSeconds(chain.TotalDuration), formatSeconds(chain.LongestSession))
				return nil
			})
		},
	}
}

func chainBreakCmd() *cli.Command {
	return &cli.Command{
		Name:      "break",
		Usage:     "Break the chain (discipline violation)",
		ArgsUsage: "<chain-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reason", Aliases: []string{"r"}, Usage: "Why the chain broke", Required: true},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("chain ID is required")
			}
			chainID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				chain, err := svc.BreakChain(chainID, service.BreakInput{Reason: c.String("reason")})
				if err != nil {
					if errors.Is(err, service.ErrChainNotActive) {
						fmt.Println("❌ Chain is not active anymore.")
						return err
					}
					fmt.Printf("Error breaking chain: %v\n", err)
					return err
				}

				fmt.Printf("💔 Chain broken at #%d\n", chain.Counter)
				fmt.Println("💡 Use 'ctdp chain start <context-id>' to begin a fresh chain.")
				return nil
			})
		},
	}
}

func chainArchiveCmd() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Archive a chain (hide it from active views)",
		ArgsUsage: "<chain-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("chain ID is required")
			}
			chainID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				if !svc.ArchiveChain(chainID) {
					fmt.Println("❌ Could not archive chain.")
					return fmt.Errorf("archive failed for chain %s", chainID)
				}
				fmt.Printf("📦 Chain %s archived\n", shortID(chainID))
				return nil
			})
		},
	}
}

func chainPauseCmd() *cli.Command {
	return &cli.Command{
		Name:      "pause",
		Usage:     "Pause the running session",
		ArgsUsage: "<chain-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Optional note"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("chain ID is required")
			}
			chainID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				if _, err := svc.PauseSession(chainID, c.String("note")); err != nil {
					fmt.Printf("Error pausing session: %v\n", err)
					return err
				}
				fmt.Println("⏸️  Session paused")
				return nil
			})
		},
	}
}

func chainResumeCmd() *cli.Command {
	return &cli.Command{
		Name:      "resume",
		Usage:     "Resume a paused session",
		ArgsUsage: "<chain-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Optional note"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("chain ID is required")
			}
			chainID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				if _, err := svc.ResumeSession(chainID, c.String("note")); err != nil {
					fmt.Printf("Error resuming session: %v\n", err)
					return err
				}
				fmt.Println("▶️  Session resumed")
				return nil
			})
		},
	}
}

func chainRenameCmd() *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename the current session's task",
		ArgsUsage: "<chain-id> <title>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("chain ID and title are required")
			}
			chainID := c.Args().Get(0)
			title := c.Args().Get(1)

			return withService(func(svc *service.ChainService) error {
				entry, err := svc.UpdateTaskTitle(chainID, title)
				if err != nil {
					fmt.Printf("Error renaming task: %v\n", err)
					return err
				}
				if entry.Title != nil {
					fmt.Printf("✏️  Task renamed to '%s'\n", *entry.Title)
				}
				return nil
			})
		},
	}
}

func chainHistoryCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show a chain's log history",
		ArgsUsage: "<chain-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("chain ID is required")
			}
			chainID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				chain, err := svc.GetChain(chainID)
				if err != nil {
					fmt.Printf("Error getting chain: %v\n", err)
					return err
				}

				fmt.Printf("🔗 Chain #%d on '%s' (%s)\n\n", chain.Counter, chain.Context.Name, chain.Status)
				for _, entry := range chain.Logs {
					line := entry.Message
					if entry.Title != nil {
						line = fmt.Sprintf("%s [%s]", line, *entry.Title)
					}
					if entry.Duration != nil {
						line = fmt.Sprintf("%s (%s)", line, formatSeconds(*entry.Duration))
					}
					fmt.Printf("  %s  %-12s %s\n",
						entry.CreatedAt.Format("2006-01-02 15:04"), entry.Type, line)
					if len(entry.Tags) > 0 {
						names := make([]string, 0, len(entry.Tags))
						for _, tag := range entry.Tags {
							names = append(names, tag.Name)
						}
						fmt.Printf("      🏷️  %v\n", names)
					}
				}
				if len(chain.Logs) == 0 {
					fmt.Println("  No log entries.")
				}
				return nil
			})
		},
	}
}
