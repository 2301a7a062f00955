package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pinboard/cmd/pinctl/output"

	"github.com/spf13/cobra"
)

func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return uint(id), nil
}

func newFeedCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Show every pin, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.client()
			if err != nil {
				return err
			}
			pins, err := c.Feed(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), pins); ok {
				return err
			}
			output.Pins(cmd.OutOrStdout(), pins)
			return nil
		},
	}
}

func newPinCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <pin-id>",
		Short: "Show one pin with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "pin")
			if err != nil {
				return err
			}
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			pin, err := c.Pin(cmd.Context(), id)
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), pin); ok {
				return err
			}
			output.Pin(cmd.OutOrStdout(), pin)
			return nil
		},
	}
}

func newCreateCmd(s *settings) *cobra.Command {
	var title, link, image string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pin from a local image",
		Long: `Create a pin from a local image file.

Examples:
  pinctl create --title Sunset --link https://example.com/sunset --image ./sunset.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			f, err := os.Open(image)
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			defer f.Close()

			pin, err := c.CreatePin(cmd.Context(), title, link, filepath.Base(image), f)
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), pin); ok {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Created pin #%d", pin.ID)
			output.Pin(cmd.OutOrStdout(), pin)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Pin title")
	cmd.Flags().StringVar(&link, "link", "", "External link the pin points to")
	cmd.Flags().StringVar(&image, "image", "", "Path to the image file")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("link")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func newDeleteCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pin-id>",
		Short: "Delete one of your pins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "pin")
			if err != nil {
				return err
			}
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			if err := c.DeletePin(cmd.Context(), id); err != nil {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Deleted pin #%d", id)
			return nil
		},
	}
}

func newCommentCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <pin-id> <text>...",
		Short: "Comment on a pin",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "pin")
			if err != nil {
				return err
			}
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			comment, err := c.Comment(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), comment); ok {
				return err
			}
			output.Success(cmd.OutOrStdout(), "Commented on pin #%d", id)
			return nil
		},
	}
}

func newLikeCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "like <pin-id>",
		Short: "Like a pin, or unlike it if you already do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "pin")
			if err != nil {
				return err
			}
			c, err := s.authedClient()
			if err != nil {
				return err
			}
			result, err := c.Like(cmd.Context(), id)
			if err != nil {
				return err
			}
			if ok, err := s.printJSON(cmd.OutOrStdout(), result); ok {
				return err
			}
			if result.Liked {
				output.Success(cmd.OutOrStdout(), "Liked pin #%d (%d likes)", id, result.Likes)
			} else {
				output.Info(cmd.OutOrStdout(), "Unliked pin #%d (%d likes)", id, result.Likes)
			}
			return nil
		},
	}
}
