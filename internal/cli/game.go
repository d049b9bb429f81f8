package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game session commands",
	}

	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameLeaveCmd())
	cmd.AddCommand(newGameActiveCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameHistoryCmd())

	return cmd
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <number>",
		Short: "Join the open session with a chosen number (1-9)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid number: %w", err)
			}

			req := map[string]int{"chosen_number": number}
			var result JoinResult

			if err := client.Post("/api/v1/game/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <session-id>",
		Short: "Leave a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			var result SessionDetail
			if err := client.Delete(fmt.Sprintf("/api/v1/game/leave/%s", sessionID), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			// An unknown session returns no body
			if result.ID == "" {
				out.PrintMessage("Left session")
				return nil
			}
			out.Print(result)
			return nil
		},
	}
}

func newGameActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List open sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []SessionDetail

			if err := client.Get("/api/v1/game/active", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Get a session's detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			var result SessionDetail

			if err := client.Get(fmt.Sprintf("/api/v1/game/sessions/%s", sessionID), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List sessions grouped by date",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionsByDate

			if err := client.Get("/api/v1/game/sessions-by-date", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newTopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top [period]",
		Short: "Show the leaderboard (period: all, day, week, month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/game/top"
			if len(args) == 1 {
				path = fmt.Sprintf("/api/v1/game/top/%s", args[0])
			}

			var result LeaderboardResult

			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
