package commands

import (
	"errors"
	"fmt"

	"github.com/kutbudev/ctdp/internal/service"
	"github.com/urfave/cli/v2"
)

// NewReserveCommand creates all subcommands for the 'reserve' command group.
// Reservations are auxiliary chains: a commitment to start a context within
// a delay window.
func NewReserveCommand() *cli.Command {
	return &cli.Command{
		Name:  "reserve",
		Usage: "Manage reservations (auxiliary chains)",
		Action: func(c *cli.Context) error {
			return listReservations(c)
		},
		Subcommands: []*cli.Command{
			reserveNewCmd(),
			reserveListCmd(),
			reserveFulfillCmd(),
			reserveFailCmd(),
			reserveCancelCmd(),
			reserveInfoCmd(),
		},
	}
}

func reserveNewCmd() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Reserve a start on a context within a delay window",
		ArgsUsage: "<context-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "delay", Aliases: []string{"d"}, Usage: "Minutes until the deadline"},
			&cli.StringFlag{Name: "description", Usage: "What the reservation is for"},
			&cli.BoolFlag{Name: "no-reminder", Usage: "Disable the deadline reminder"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("context ID is required")
			}
			contextID := c.Args().First()

			return withService(func(svc *service.ChainService) error {
				input := service.ScheduleInput{
					TargetContextID: contextID,
					DelayMinutes:    c.Int("delay"),
					Description:     c.String("description"),
				}
				if c.Bool("no-reminder") {
					reminder := false
					input.Reminder = &reminder
				}

				id, err := svc.ScheduleAuxiliaryTask(input)
				if err != nil {
					if errors.Is(err, service.ErrReservationPending) {
						fmt.Println("❌ A reservation is already pending for this context.")
						fmt.Println("💡 Fulfill, fail or cancel it before reserving again.")
						return err
					}
					fmt.Printf("Error creating reservation: %v\n", err)
					return err
				}

				fmt.Printf("⏰ Reservation created\n")
				fmt.Printf("   ID: %s\n", id)
				return nil
			})
		},
	}
}

func reserveListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Usage:   "List upcoming reservations",
		Aliases: []string{"ls"},
		Action:  listReservations,
	}
}

func listReservations(c *cli.Context) error {
	return withService(func(svc *service.ChainService) error {
		tasks, err := svc.GetUpcomingAuxiliaryTasks()
		if err != nil {
			fmt.Printf("Error listing reservations: %v\n", err)
			return err
		}

		if len(tasks) == 0 {
			fmt.Println("No upcoming reservations.")
			return nil
		}

		fmt.Printf("⏰ Upcoming reservations (%d):\n\n", len(tasks))
		for _, task := range tasks {
			name := task.TargetContextID
			if task.TargetContext != nil {
				name = task.TargetContext.Name
			}
			fmt.Printf("• %s  due %s  (ID: %s)\n",
				name, task.Deadline.Format("15:04"), shortID(task.ID))
			if task.Description != "" {
				fmt.Printf("  %s\n", truncateString(task.Description, 70))
			}
		}
		return nil
	})
}

func reserveFulfillCmd() *cli.Command {
	return &cli.Command{
		Name:      "fulfill",
		Usage:     "Mark a reservation honored (session started on time)",
		ArgsUsage: "<reservation-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("reservation ID is required")
			}
			return withService(func(svc *service.ChainService) error {
				if !svc.FulfillAuxiliaryTask(c.Args().First()) {
					fmt.Println("❌ Could not fulfill reservation (already settled?).")
					return fmt.Errorf("fulfill failed")
				}
				fmt.Println("✅ Reservation honored on time")
				return nil
			})
		},
	}
}

func reserveFailCmd() *cli.Command {
	return &cli.Command{
		Name:      "fail",
		Usage:     "Mark a reservation missed (deadline passed)",
		ArgsUsage: "<reservation-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("reservation ID is required")
			}
			return withService(func(svc *service.ChainService) error {
				if !svc.FailAuxiliaryTask(c.Args().First()) {
					fmt.Println("❌ Could not fail reservation (already settled?).")
					return fmt.Errorf("fail failed")
				}
				fmt.Println("💔 Reservation marked as missed")
				return nil
			})
		},
	}
}

func reserveCancelCmd() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Cancel a reservation (breaks the main chain)",
		ArgsUsage: "<reservation-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "reason", Aliases: []string{"r"}, Usage: "Why the reservation was abandoned", Required: true},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("reservation ID is required")
			}
			return withService(func(svc *service.ChainService) error {
				if !svc.CancelAuxiliaryTask(c.Args().First(), c.String("reason")) {
					fmt.Println("❌ Could not cancel reservation (already settled?).")
					return fmt.Errorf("cancel failed")
				}
				fmt.Println("🚫 Reservation cancelled. The main chain is broken.")
				return nil
			})
		},
	}
}

func reserveInfoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show reservation defaults for a context",
		ArgsUsage: "<context-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("context ID is required")
			}
			return withService(func(svc *service.ChainService) error {
				info, err := svc.GetContextAuxiliaryInfo(c.Args().First())
				if err != nil {
					fmt.Printf("Error getting reservation info: %v\n", err)
					return err
				}

				fmt.Printf("⏰ Reservation defaults:\n")
				fmt.Printf("   Delay: %d minutes\n", info.DelayMinutes)
				fmt.Printf("   Description: %s\n", info.Description)
				fmt.Printf("   Reminder: %v\n", info.Reminder)
				fmt.Printf("   Trigger: %s\n", info.TriggerAction)
				return nil
			})
		},
	}
}
