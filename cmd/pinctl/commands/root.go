package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pinboard/client"
	"pinboard/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// settings are the global flags shared by every command.
type settings struct {
	apiURL      string
	consulAddr  string
	serviceName string
	tokenFile   string
	jsonOutput  bool
}

// NewRootCmd builds the pinctl command tree.
func NewRootCmd() *cobra.Command {
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:   "pinctl",
		Short: "pinctl - browse and share pins from the terminal",
		Long: `pinctl talks to a pinboard server over its REST API.

Sign in once and the token is kept in ~/.pinctl/token for later commands.

Examples:
  pinctl signup --email ann@example.com --name Ann --password secret123
  pinctl signin --email ann@example.com --password secret123
  pinctl feed
  pinctl create --title Sunset --link https://example.com --image sunset.png
  pinctl like 12
  pinctl --consul localhost:8500 feed`,
		SilenceUsage: true,
		Version:      "1.0.0",
	}

	defaultAPI := os.Getenv("PINCTL_API_URL")
	if defaultAPI == "" {
		defaultAPI = client.DefaultBaseURL
	}
	rootCmd.PersistentFlags().StringVar(&s.apiURL, "api", defaultAPI, "Base URL of the pinboard server (env PINCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&s.consulAddr, "consul", os.Getenv("PINCTL_CONSUL_ADDR"), "Consul agent to find the server through; overrides --api (env PINCTL_CONSUL_ADDR)")
	rootCmd.PersistentFlags().StringVar(&s.serviceName, "service", "pinboard", "Service name looked up in Consul")
	rootCmd.PersistentFlags().StringVar(&s.tokenFile, "token-file", defaultTokenFile(), "File holding the bearer token")
	rootCmd.PersistentFlags().BoolVar(&s.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newSignupCmd(s),
		newSigninCmd(s),
		newSignoutCmd(s),
		newFeedCmd(s),
		newPinCmd(s),
		newCreateCmd(s),
		newDeleteCmd(s),
		newCommentCmd(s),
		newLikeCmd(s),
		newBoardCmd(s),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pinctl", "token")
	}
	return filepath.Join(home, ".pinctl", "token")
}

// client returns an API client carrying the saved token, if any.
func (s *settings) client() (*client.Client, error) {
	token, err := loadToken(s.tokenFile)
	if err != nil {
		return nil, err
	}
	baseURL, err := s.baseURL()
	if err != nil {
		return nil, err
	}
	return client.New(baseURL, token), nil
}

// baseURL is --api, or the first healthy HTTP instance Consul knows of when
// --consul is set.
func (s *settings) baseURL() (string, error) {
	if s.consulAddr == "" {
		return s.apiURL, nil
	}
	reg, err := registry.NewConsulRegistry(s.consulAddr, zap.NewNop())
	if err != nil {
		return "", err
	}
	addrs, err := reg.Discover(s.serviceName, "http")
	if err != nil {
		return "", err
	}
	return "http://" + addrs[0], nil
}

// authedClient is client for commands that cannot work signed out.
func (s *settings) authedClient() (*client.Client, error) {
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	if c.Token == "" {
		return nil, fmt.Errorf("not signed in: run `pinctl signin` first")
	}
	return c, nil
}

// printJSON writes v when --json is set and reports whether it did.
func (s *settings) printJSON(w io.Writer, v any) (bool, error) {
	if !s.jsonOutput {
		return false, nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}
