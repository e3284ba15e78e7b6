package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/stubro/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Chapter Conquest SSH server",
	Long: `Start an SSH server that lets players connect and play.

Each SSH connection gets its own session with the chapter picker. The SSH
user name is the player name: runs and token balances are kept per name
and all players share one scoreboard.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.stubro/host_key

Examples:
  stubro serve                           # Listen on :23234 with auto-generated key
  stubro serve --ssh :2222               # Listen on port 2222
  stubro serve --content-dir ./chapters  # Offer these chapters
  stubro serve --generator procedural    # Build levels offline

Players can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagContentDir, "content-dir", "./chapters", "Directory with chapter files")
	addGeneratorFlags(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	a, err := setup(false)
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	session, err := a.sessionConfig()
	if err != nil {
		a.Close()
		fatal("%v", err)
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Session = session

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		a.Close()
		fatal("creating server: %v", err)
	}

	fmt.Printf("Starting Chapter Conquest SSH server on %s\n", cfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(cfg.Address))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		a.Close()
		fatal("server: %v", err)
	}
}

// portOf returns the port part of a listen address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
