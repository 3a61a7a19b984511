// Copyright (c) Microsoft. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazil.org/fuse/fs"
	webhdfs "github.com/microsoft/webhdfs-mount"
	"github.com/microsoft/webhdfs-mount/mount"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// Command line options
type options struct {
	configPath      string
	user            string
	timeout         time.Duration
	natMap          map[string]string
	transport       string
	namenodes       []string
	retries         int
	allowedPrefixes []string
	expandZips      bool
	readOnly        bool
	logLevel        string
	metricsAddr     string
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhdfs-mount [ENTRYPOINT] MOUNTPOINT",
		Short: "Mounts an HDFS cluster through WebHDFS as a local filesystem",
		Long: `Mounts an HDFS cluster as a local FUSE filesystem.

ENTRYPOINT is the WebHDFS base URL of the NameNode, e.g. http://namenode:9870.
It may be omitted if the configuration file names it, or when the rpc transport is used.
Files are append-only: writes must land at the end of file.`,
		Version:      versionString(),
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.user, "user", "", "HDFS user name")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Deadline of a single HDFS operation (default 30s)")
	flags.StringToStringVar(&opts.natMap, "natmap", nil, "DataNode address translation, e.g. dn1:9864=10.0.0.1:9864")
	flags.StringVar(&opts.transport, "transport", "", "Transport: webhdfs or rpc")
	flags.StringSliceVar(&opts.namenodes, "namenodes", nil, "NameNode RPC addresses for the rpc transport")
	flags.IntVar(&opts.retries, "retries", 0, "Attempts for metadata operations (1 disables retries)")
	flags.StringSliceVar(&opts.allowedPrefixes, "allowedPrefixes", []string{"*"}, "Comma-separated list of allowed path prefixes on the remote file system")
	flags.BoolVar(&opts.expandZips, "expandZips", false, "Enables automatic expansion of ZIP archives as read-only directories")
	flags.BoolVar(&opts.readOnly, "readOnly", false, "Mount as read-only")
	flags.StringVar(&opts.logLevel, "logLevel", "info", "Log level: debug, info, warning or error")
	flags.StringVar(&opts.metricsAddr, "metricsAddr", "", "Serve prometheus metrics on this address, e.g. :9100")
	return cmd
}

// Merges the configuration file and the command line, returns the config and the mount point
func buildConfig(cmd *cobra.Command, opts *options, args []string) (*webhdfs.Config, string, error) {
	cfg := webhdfs.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := webhdfs.LoadConfig(opts.configPath)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}
	mountPoint := args[len(args)-1]
	if len(args) == 2 {
		cfg.Entrypoint = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("user") {
		cfg.User = opts.user
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("natmap") {
		cfg.NatMap = opts.natMap
	}
	if flags.Changed("transport") {
		cfg.Transport = opts.transport
	}
	if flags.Changed("namenodes") {
		cfg.Namenodes = opts.namenodes
	}
	if flags.Changed("retries") {
		cfg.Retry.MaxAttempts = opts.retries
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, mountPoint, nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	if err := webhdfs.InitLogger(os.Stderr, opts.logLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	cfg, mountPoint, err := buildConfig(cmd, opts, args)
	if err != nil {
		return err
	}
	if opts.metricsAddr != "" {
		serveMetrics(opts.metricsAddr)
	}

	client, err := webhdfs.NewSyncHdfsClientFromConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "NewSyncHdfsClient")
	}
	fileSystem, err := mount.NewFileSystem(client, mountPoint, opts.allowedPrefixes, opts.expandZips, opts.readOnly, webhdfs.WallClock{})
	if err != nil {
		return errors.Wrap(err, "NewFileSystem")
	}

	c, err := fileSystem.Mount()
	if err != nil {
		return err
	}
	defer func() {
		if err := fileSystem.Unmount(); err != nil {
			webhdfs.Log.WithError(err).Warning("unmount failed")
		}
		webhdfs.Log.Info("Closing...")
		c.Close()
		webhdfs.Log.Info("Closed...")
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for x := range sigs {
			//Handling INT/TERM signals - trying to gracefully unmount and exit
			webhdfs.Log.Info("Signal received: " + x.String())
			// Also reseting retry policy properties to stop useless retries
			if ft, ok := client.Client().(*webhdfs.FaultTolerantClient); ok {
				ft.RetryPolicy.MaxAttempts = 0
				ft.RetryPolicy.MaxDelay = 0
			}
			if err := fileSystem.Unmount(); err != nil { // this will cause Serve() call below to exit
				webhdfs.Log.WithError(err).Warning("unmount failed")
			}
		}
	}()

	webhdfs.Log.WithField("mountpoint", mountPoint).Info("Serving")
	if err := fs.Serve(c, fileSystem); err != nil {
		return err
	}

	// check if the mount process has an error to report
	<-c.Ready
	return c.MountError
}

// Registers harness metrics and serves them in the background
func serveMetrics(addr string) {
	webhdfs.DefaultMetrics = webhdfs.NewMetrics("")
	prometheus.MustRegister(webhdfs.DefaultMetrics.Collectors()...)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			webhdfs.Log.WithError(err).Error("metrics server failed")
		}
	}()
}

func main() {
	if err := newRootCommand(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}
