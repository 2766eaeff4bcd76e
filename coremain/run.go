package coremain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanchis/localit/mlog"
	"github.com/sanchis/localit/pkg/keystore"
	"github.com/sanchis/localit/pkg/storage"
	"github.com/sanchis/localit/pkg/storage/bolt_storage"
	"github.com/sanchis/localit/pkg/storage/mem_storage"
)

type cmdFlags struct {
	c      string
	expire string
}

var rootCmd = &cobra.Command{
	Use:          "localit",
	Short:        "Namespaced key/value storage with expiration.",
	SilenceUsage: true,
}

func init() {
	cf := new(cmdFlags)
	rootCmd.PersistentFlags().StringVarP(&cf.c, "config", "c", "", "config file")

	setCmd := &cobra.Command{
		Use:   "set key value [-e expiration]",
		Short: "Store a value under the current domain.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cf, func(s *keystore.Store) error {
				if len(cf.expire) > 0 {
					return s.Set(args[0], args[1], cf.expire)
				}
				return s.Set(args[0], args[1])
			})
		},
		DisableFlagsInUseLine: true,
	}
	setCmd.Flags().StringVarP(&cf.expire, "expire", "e", "", "expiration spec, e.g. 90s, 15m, 12h, 7d")

	getCmd := &cobra.Command{
		Use:   "get key",
		Short: "Print the value stored under the current domain.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cf, func(s *keystore.Store) error {
				v, err := s.Get(args[0])
				if err != nil {
					return err
				}
				return json.NewEncoder(os.Stdout).Encode(v)
			})
		},
		DisableFlagsInUseLine: true,
	}

	removeCmd := &cobra.Command{
		Use:   "remove key",
		Short: "Delete a key and its expiration.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cf, func(s *keystore.Store) error {
				return s.Remove(args[0])
			})
		},
		DisableFlagsInUseLine: true,
	}

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "List every fully-qualified key in the backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cf, func(s *keystore.Store) error {
				keys, err := s.Keys()
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Println(k)
				}
				return nil
			})
		},
		DisableFlagsInUseLine: true,
	}

	clearDomainCmd := &cobra.Command{
		Use:   "clear-domain [domain]",
		Short: "Remove every key belonging to a domain.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cf, func(s *keystore.Store) error {
				if len(args) > 0 {
					return s.ClearDomain(args[0])
				}
				return s.ClearDomain()
			})
		},
		DisableFlagsInUseLine: true,
	}

	bustCmd := &cobra.Command{
		Use:   "bust",
		Short: "Clear the backend entirely, all domains included.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cf, func(s *keystore.Store) error {
				return s.Bust()
			})
		},
		DisableFlagsInUseLine: true,
	}

	rootCmd.AddCommand(setCmd, getCmd, removeCmd, keysCmd, clearDomainCmd, bustCmd)
}

func AddSubCmd(c *cobra.Command) {
	rootCmd.AddCommand(c)
}

func Run() error {
	return rootCmd.Execute()
}

// withStore builds a store from the config file, runs f, then releases
// the backends.
func withStore(cf *cmdFlags, f func(s *keystore.Store) error) error {
	cfg, fileUsed, err := loadCmdConfig(cf.c)
	if err != nil {
		return err
	}

	lg, err := mlog.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	if len(fileUsed) > 0 {
		lg.Debug("config file loaded", zap.String("file", fileUsed))
	}

	var primary storage.Backend
	if len(cfg.Store.Primary.Path) > 0 {
		primary, err = bolt_storage.NewBoltStorage(bolt_storage.BoltStorageOpts{
			Path:     cfg.Store.Primary.Path,
			Bucket:   cfg.Store.Primary.Bucket,
			Compress: cfg.Store.Primary.Compress,
			Logger:   lg,
		})
		if err != nil {
			return fmt.Errorf("failed to open primary backend: %w", err)
		}
	} else {
		lg.Warn("no primary database path configured, falling back to memory")
		primary = mem_storage.NewMemStorage()
	}
	secondary := mem_storage.NewMemStorage()
	defer func() {
		primary.Close()
		secondary.Close()
	}()

	store, err := keystore.New(keystore.Options{
		Primary:   primary,
		Secondary: secondary,
		Logger:    lg,
	})
	if err != nil {
		return err
	}
	store.Config(keystore.Config{Domain: cfg.Store.Domain, Type: cfg.Store.Type})
	return f(store)
}

// loadCmdConfig is loadConfig, except that a missing implicit config file
// is not an error: commands then run on built-in defaults.
func loadCmdConfig(filePath string) (*Config, string, error) {
	cfg, fileUsed, err := loadConfig(filePath)
	if err != nil {
		if len(filePath) > 0 {
			return nil, "", err
		}
		return new(Config), "", nil
	}
	return cfg, fileUsed, nil
}
