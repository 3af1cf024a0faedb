// Copyright (c) 2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gigware/appscale-tools/pkg/bootstrap"
	"github.com/Gigware/appscale-tools/pkg/common"
	"github.com/Gigware/appscale-tools/pkg/common/logging"
	"github.com/Gigware/appscale-tools/pkg/common/metrics"
	"github.com/Gigware/appscale-tools/pkg/common/sshutil"
	"github.com/Gigware/appscale-tools/pkg/deploy"
	"github.com/Gigware/appscale-tools/pkg/deployerr"
	"github.com/Gigware/appscale-tools/pkg/lock"
	"github.com/Gigware/appscale-tools/pkg/metadata"
	"github.com/Gigware/appscale-tools/pkg/provision"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/multierr"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	version string
	app     = kingpin.New(common.ToolsName, "Bootstrap AppScale deployments")

	debug = app.Flag(
		"debug", "enable debug logging").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	jsonLogs = app.Flag(
		"json-logs", "log in JSON instead of text").
		Default("false").
		Envar("APPSCALE_JSON_LOGS").
		Bool()

	enableSentry = app.Flag(
		"enable-sentry", "enable logging hook up to sentry").
		Default("false").
		Envar("ENABLE_SENTRY_LOGGING").
		Bool()

	cfgFiles = app.Flag(
		"config",
		"YAML config files (can be provided multiple times to merge configs)").
		Short('c').
		ExistingFiles()

	stateDir = app.Flag(
		"state-dir",
		"Directory holding deployment metadata and locks (set $APPSCALE_STATE_DIR to override)").
		Default(defaultStateDir()).
		Envar("APPSCALE_STATE_DIR").
		String()

	sshKey = app.Flag(
		"ssh-key",
		"Private key used to reach deployment machines (ssh.key_file override)").
		Envar("APPSCALE_SSH_KEY").
		String()

	lockZKServers = app.Flag(
		"lock-zk-server",
		"ZooKeeper servers for the deployment lock. Specify multiple times for "+
			"multiple servers (lock.zk_servers override)").
		Envar("APPSCALE_LOCK_ZK_SERVERS").
		Strings()

	up     = app.Command("up", "Start a deployment")
	upOpts upOptions
)

func init() {
	up.Flag("placement", "YAML placement file").
		Required().
		ExistingFileVar(&upOpts.placement)
	up.Flag("name", "Deployment name (placement name override)").
		StringVar(&upOpts.name)
	up.Flag("infrastructure", "Infrastructure to deploy on").
		EnumVar(&upOpts.infrastructure, "cluster", "ec2", "gce")
	up.Flag("machines", "Number of machines").
		IntVar(&upOpts.machines)
	up.Flag("image", "Machine image for cloud targets").
		StringVar(&upOpts.image)
	up.Flag("instance-type", "Instance type for cloud targets").
		StringVar(&upOpts.instanceType)
	up.Flag("zone", "Zone for cloud targets").
		StringVar(&upOpts.zone)
	up.Flag("keyname", "Name of the ssh key pair for cloud targets").
		StringVar(&upOpts.keyName)
	up.Flag("admin-user", "Admin e-mail address").
		Envar("APPSCALE_ADMIN_USER").
		StringVar(&upOpts.adminUser)
	up.Flag("admin-pass", "Admin password").
		Envar("APPSCALE_ADMIN_PASSWORD").
		StringVar(&upOpts.adminPassword)
	up.Flag("test", "Use the default admin credentials").
		BoolVar(&upOpts.test)
	up.Flag("force", "Replace the metadata of a deployment with the same name").
		BoolVar(&upOpts.force)
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".appscale"
	}
	return filepath.Join(home, ".appscale")
}

func newFormatter(json bool) log.Formatter {
	var base log.Formatter = &log.TextFormatter{FullTimestamp: true}
	if json {
		base = &log.JSONFormatter{}
	}
	return &logging.LogFieldFormatter{
		Formatter: &logging.SecretsFormatter{Formatter: base},
		Fields: log.Fields{
			common.AppLogField: app.Name,
		},
	}
}

func main() {
	app.Version(version)
	app.HelpFlag.Short('h')
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	log.SetFormatter(newFormatter(*jsonLogs))
	log.SetLevel(log.InfoLevel)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(*stateDir, *cfgFiles...)
	if err != nil {
		log.WithError(err).Fatal("Cannot parse yaml config")
	}
	if *sshKey != "" {
		cfg.SSH.KeyFile = *sshKey
	}
	if len(*lockZKServers) > 0 {
		cfg.Lock.Backend = lock.ZooKeeperBackend
		cfg.Lock.ZKServers = *lockZKServers
	}

	if *enableSentry {
		logging.ConfigureSentry(&cfg.SentryConfig)
	}

	switch command {
	case up.FullCommand():
		err = runUp(cfg, upOpts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func runUp(cfg *Config, opts upOptions) (err error) {
	req, err := loadPlacement(opts.placement)
	if err != nil {
		return err
	}
	opts.apply(&req)

	rootScope, scopeCloser, err := metrics.InitMetricScope(&cfg.Metrics, common.ToolsName)
	if err != nil {
		return errors.Wrap(err, "failed to initialize metrics")
	}
	defer func() {
		err = multierr.Append(err, scopeCloser.Close())
	}()

	orchestrator, closer, err := newOrchestrator(cfg, rootScope)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closer.Close())
	}()
	return orchestrator.Run(req)
}

// newOrchestrator wires every component of a run. The returned closer
// releases the lock backend.
func newOrchestrator(cfg *Config, scope tally.Scope) (*deploy.Orchestrator, io.Closer, error) {
	ssh, err := sshutil.NewClient(cfg.SSH)
	if err != nil {
		return nil, nil, err
	}
	store, err := metadata.NewFileStore(cfg.Metadata.Directory)
	if err != nil {
		return nil, nil, err
	}
	checkpointer := metadata.NewCheckpointer(
		store,
		metadata.NewSSHPusher(ssh, cfg.Metadata.RemoteDirectory),
		cfg.Metadata.PushTimeout,
		scope,
	)
	registry := provision.NewRegistry(cfg.Provision, ssh, provision.ExecRunner{})
	helper := bootstrap.NewHelper(cfg.Bootstrap, registry, checkpointer, scope)

	locker, err := lock.New(cfg.Lock, cfg.Lock.Directory)
	if err != nil {
		return nil, nil, err
	}
	return deploy.NewOrchestrator(
		cfg.Deploy,
		helper,
		store,
		locker,
		deploy.NewTerminalPrompter(),
		scope,
	), locker, nil
}

// formatError renders err for the terminal.
func formatError(err error) string {
	var b strings.Builder
	switch cause := errors.Cause(err).(type) {
	case *deployerr.BadConfigurationError:
		b.WriteString("The deployment request is not valid:\n")
		for _, p := range cause.Problems {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	case *deployerr.DeploymentFailureError:
		fmt.Fprintf(&b, "The deployment failed while running %s (%d attempt(s), %s).\n",
			cause.Step, cause.Attempts, cause.Waited)
		if cause.Cause != nil {
			fmt.Fprintf(&b, "Last error: %v\n", cause.Cause)
		}
		if deployerr.IsAuthenticationMismatch(cause) {
			b.WriteString("The head node rejected the deployment secret. " +
				"Another run may have started it.\n")
		}
	default:
		fmt.Fprintf(&b, "Error: %v\n", err)
	}
	return strings.TrimRight(b.String(), "\n")
}
