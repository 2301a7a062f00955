package commands

import (
	"strings"

	"pinboard/cmd/pinctl/output"

	"github.com/spf13/cobra"
)

func newBoardCmd(s *settings) *cobra.Command {
	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Manage your boards",
		Long: `Manage your boards of saved pins.

Subcommands:
  list    - Show your boards
  show    - Show one board
  create  - Create a board
  add     - Add a pin to a board`,
	}
	boardCmd.AddCommand(
		newBoardListCmd(s),
		newBoardShowCmd(s),
		newBoardCreateCmd(s),
		newBoardAddCmd(s),
	)
	return boardCmd
}

func newBoardListCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show your boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			boards, err := c.Boards(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), boards); ok {
				return err
			}
			output.Boards(cmd.OutOrStdout(), boards)
			return nil
		},
	}
}

func newBoardShowCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show <board-id>",
		Short: "Show one board with its pins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "board")
			if err != nil {
				return err
			}
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			board, err := c.Board(cmd.Context(), id)
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), board); ok {
				return err
			}
			output.Board(cmd.OutOrStdout(), board)
			return nil
		},
	}
}

func newBoardCreateCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>...",
		Short: "Create a board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			board, err := c.CreateBoard(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), board); ok {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Created board #%d %s", board.ID, board.Name)
			return nil
		},
	}
}

func newBoardAddCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "add <board-id> <pin-id>",
		Short: "Add a pin to one of your boards",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, err := parseID(args[0], "board")
			if err != nil {
				return err
			}
			pinID, err := parseID(args[1], "pin")
			if err != nil {
				return err
			}
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			board, err := c.AddPinToBoard(cmd.Context(), boardID, pinID)
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), board); ok {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Added pin #%d to board %s", pinID, board.Name)
			output.Board(cmd.OutOrStdout(), board)
			return nil
		},
	}
}
