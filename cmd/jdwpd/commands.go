package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-jdwp/jdwpd/jdwp"
	"github.com/go-jdwp/jdwpd/pkg/config"
	"github.com/go-jdwp/jdwpd/pkg/logflags"
	"github.com/go-jdwp/jdwpd/pkg/version"
	"github.com/spf13/cobra"
)

var (
	logFlag    bool
	logOutput  string
	logDest    string
	agentlib   string
	listenAddr string
	verbose    bool

	conf *config.Config
)

const jdwpdCommandLongDesc = `jdwpd is a standalone host for a JDWP session controller.

It parses a JDWP option string the same way a JVM would when starting
with -agentlib:jdwp=..., then drives a session against a Collaborator
that logs every incoming command packet instead of acting on it. This
is a harness for exercising the transport and framing layers outside of
a real runtime, not a debugger in its own right.`

func newRootCommand() *cobra.Command {
	conf = config.LoadConfig()

	root := &cobra.Command{
		Use:   "jdwpd",
		Short: "Host a JDWP session controller.",
		Long:  jdwpdCommandLongDesc,
	}

	root.PersistentFlags().BoolVarP(&logFlag, "log", "", false, "Enable session logging.")
	root.PersistentFlags().StringVarP(&logOutput, "log-output", "", conf.LogOutput,
		"Comma separated list of log categories: session,transport,handshake,packet,token.")
	root.PersistentFlags().StringVarP(&logDest, "log-dest", "", conf.LogDest,
		"Writes logs to the specified file or file descriptor.")

	root.AddCommand(newServeCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a session from a JDWP option string.",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&agentlib, "agentlib", "", `JDWP option string, e.g. "transport=dt_socket,server=y,suspend=n,address=8000"`)
	cmd.Flags().StringVarP(&listenAddr, "listen", "l", conf.ListenAddress, "Override the address embedded in --agentlib.")
	return cmd
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version.JdwpdVersion.String())
			if verbose {
				fmt.Println(version.BuildInfo())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print toolchain and module/dependency build info.")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	if agentlib == "" {
		return errors.New("--agentlib is required")
	}
	if err := logflags.Setup(logFlag, logOutput, logDest); err != nil {
		return err
	}
	defer logflags.Close()

	opts, err := jdwp.ParseOptions(agentlib)
	if err != nil {
		if errors.Is(err, jdwp.ErrHelpRequested) {
			fmt.Println(agentlibUsage)
			return nil
		}
		return err
	}
	if listenAddr != "" {
		host, port, err := splitListenAddr(listenAddr)
		if err != nil {
			return err
		}
		opts.Host, opts.Port = host, port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	collab := &loggingCollaborator{}
	sess, err := jdwp.Create(ctx, opts, collab)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer sess.Close()

	fmt.Printf("jdwpd: serving %s\n", opts)
	<-ctx.Done()
	return nil
}

const agentlibUsage = `usage: --agentlib="transport=<name>,server=<y|n>,suspend=<y|n>,address=<host:port|port>"`
