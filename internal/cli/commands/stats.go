package commands

import (
	"fmt"

	"github.com/kutbudev/ctdp/internal/service"
	"github.com/urfave/cli/v2"
)

// NewStatsCommand creates all subcommands for the 'stats' command group.
func NewStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show discipline statistics",
		Action: func(c *cli.Context) error {
			return showChainStats(c)
		},
		Subcommands: []*cli.Command{
			{
				Name:   "chains",
				Usage:  "Global chain statistics",
				Action: showChainStats,
			},
			{
				Name:   "contexts",
				Usage:  "Per-context statistics",
				Action: showContextStats,
			},
		},
	}
}

func showChainStats(c *cli.Context) error {
	return withService(func(svc *service.ChainService) error {
		stats, err := svc.GetChainStatistics()
		if err != nil {
			fmt.Printf("Error getting statistics: %v\n", err)
			return err
		}

		fmt.Printf("📊 Chain Statistics:\n")
		fmt.Printf("   Total chains: %d (active %d, broken %d)\n",
			stats.TotalChains, stats.ActiveChains, stats.BrokenChains)
		fmt.Printf("   Longest chain: #%d\n", stats.LongestChain)
		fmt.Printf("   Total focus time: %s\n", formatSeconds(stats.TotalFocusTime))
		fmt.Printf("   Average session: %s\n", formatSeconds(int(stats.AverageSessionDuration)))
		fmt.Printf("   Sessions today: %d\n", stats.SessionsToday)
		fmt.Printf("   Current streak: %d day(s)\n", stats.CurrentStreak)
		return nil
	})
}

func showContextStats(c *cli.Context) error {
	return withService(func(svc *service.ChainService) error {
		stats, err := svc.GetContextStatistics()
		if err != nil {
			fmt.Printf("Error getting statistics: %v\n", err)
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No contexts yet.")
			return nil
		}

		fmt.Printf("📊 Context Statistics:\n\n")
		for _, cs := range stats {
			fmt.Printf("• %s\n", cs.ContextName)
			fmt.Printf("   Sessions: %d  Focus: %s  Longest chain: #%d  Current: #%d\n",
				cs.TotalSessions, formatSeconds(cs.TotalDuration), cs.LongestChain, cs.CurrentChain)
			fmt.Printf("   Success rate: %.1f%%\n", cs.SuccessRate)
			if cs.LastSessionDate != nil {
				fmt.Printf("   Last session: %s\n", cs.LastSessionDate.Format("2006-01-02 15:04"))
			}
			fmt.Println()
		}
		return nil
	})
}
