package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/gateway"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli carries the resolved settings shared by every subcommand.
type cli struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "qcsctl",
		Short:         "Manage the predefined class list",
		Long:          "qcsctl reads and edits the predefined CSS class list of a QuickClass server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .qcsctl.yaml)")
	pf.String("server", "http://localhost:8080", "server base URL")
	pf.String("token", "", "API token")
	pf.Duration("timeout", 30*time.Second, "request timeout")
	pf.BoolP("verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newListCmd(c),
		newAddCmd(c),
		newRmCmd(c),
		newImportCmd(c),
		newExportCmd(c),
		newApplyCmd(c),
	)
	return root
}

func (c *cli) initConfig(cmd *cobra.Command) error {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.SetConfigName(".qcsctl")
		c.v.SetConfigType("yaml")
		c.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(home)
		}
	}

	c.v.SetEnvPrefix("QCS")
	c.v.AutomaticEnv()
	for _, name := range []string{"server", "token", "timeout", "verbose"} {
		if err := c.v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if c.v.GetBool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		c.logger = l
	}
	return nil
}

func (c *cli) context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.v.GetDuration("timeout"))
}

func (c *cli) gateway() *gateway.Client {
	return gateway.NewClient(c.v.GetString("server"), c.v.GetString("token"), nil)
}

// openStore loads the server's list into a fresh editing store.
func (c *cli) openStore(ctx context.Context) (*classstore.Store, error) {
	st, err := classstore.Open(ctx, c.gateway(), classstore.Strings{}, c.logger)
	if err != nil {
		return nil, describe(err)
	}
	return st, nil
}

// describe turns gateway errors into messages fit for a terminal.
func describe(err error) error {
	var rej *gateway.RejectedError
	switch {
	case errors.As(err, &rej):
		return fmt.Errorf("server refused the request: %s", rej.Message)
	case errors.Is(err, gateway.ErrUnauthorized):
		return fmt.Errorf("not authorized: check --token or QCS_TOKEN")
	case errors.Is(err, gateway.ErrTransport):
		return fmt.Errorf("cannot reach server: %w", err)
	}
	return err
}
