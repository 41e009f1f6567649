package admincmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/parlaygames/pitboss/internal/auth/rbac"
	"github.com/parlaygames/pitboss/internal/auth/token"
	"github.com/parlaygames/pitboss/internal/cli/common"
	"github.com/parlaygames/pitboss/internal/db"
	"github.com/parlaygames/pitboss/internal/feed"
	"github.com/parlaygames/pitboss/internal/objstore"
	usersgorm "github.com/parlaygames/pitboss/internal/repo/gorm/users"
	"github.com/parlaygames/pitboss/internal/rooms"
	"github.com/parlaygames/pitboss/internal/secevents"
	httpserver "github.com/parlaygames/pitboss/internal/server/http"
	"github.com/parlaygames/pitboss/internal/telemetry"
	"github.com/parlaygames/pitboss/internal/validation"
	"github.com/parlaygames/pitboss/internal/views"
	"github.com/parlaygames/pitboss/pkg/listcache"
)

// New returns the `pitboss serve` command.
func New() *cobra.Command {
	var cfgFile, profile string
	var includes []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Pitboss admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()
			v.SetEnvPrefix("PITBOSS")
			v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
			v.AutomaticEnv()
			if cfgFile != "" {
				if err := loadConfig(v, cfgFile, profile, includes); err != nil {
					return fmt.Errorf("config: %w", err)
				}
				log.Printf("[config] using %s", cfgFile)
			}

			common.MergeLogSection(v)
			common.SetupLoggerWithFile(
				v.GetString("log.level"), v.GetString("log.format"), v.GetString("log.file"),
				v.GetInt("log.max_size"), v.GetInt("log.max_backups"), v.GetInt("log.max_age"),
				v.GetBool("log.compress"),
			)

			if err := common.ValidateAdminConfig(v, false); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}

			addr := v.GetString("addr")
			dsn := v.GetString("dsn")
			jwtSecret := v.GetString("jwt_secret")
			if jwtSecret == "" {
				jwtSecret = os.Getenv("PITBOSS_JWT_SECRET")
			}
			if jwtSecret == "" {
				jwtSecret = "dev-secret"
				log.Printf("[warn] jwt_secret not set; using dev default (DEV ONLY)")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tp, err := telemetry.NewProvider(ctx, telemetry.LoadConfigFromEnv())
			if err != nil {
				log.Printf("[warn] telemetry disabled: %v", err)
			}

			gdb, err := db.Open(dsn)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := usersgorm.AutoMigrate(gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			userRepo := usersgorm.New(gdb)

			pol, err := rbac.New(v.GetString("rbac_model"), v.GetString("rbac_policy"))
			if err != nil {
				return fmt.Errorf("rbac: %w", err)
			}

			reg, err := views.Load(v.GetString("views"))
			if err != nil {
				return fmt.Errorf("views: %w", err)
			}

			roomTTL := v.GetDuration("room_ttl")
			if roomTTL <= 0 {
				roomTTL = 30 * time.Second
			}
			roomStore := rooms.NewStore(roomTTL)

			bus := feed.NewFromEnv()
			defer bus.Close()
			secStore := secevents.NewFromEnv()
			defer secStore.Close()

			var cache listcache.Store
			if u := os.Getenv("REDIS_URL"); u != "" {
				rc, err := listcache.NewRedis(u, time.Minute)
				if err != nil {
					return fmt.Errorf("list cache: %w", err)
				}
				defer rc.Close()
				cache = rc
			} else {
				cache = listcache.NewMemory()
			}

			storCfg := objstore.FromEnv()
			if storCfg.Driver == "" && storCfg.BaseDir == "" {
				storCfg.BaseDir = "data/exports"
			}
			exports, err := objstore.Open(ctx, storCfg)
			if err != nil {
				return fmt.Errorf("object storage: %w", err)
			}

			schemas := validation.NewRegistry()
			if dir := v.GetString("schemas_dir"); dir != "" {
				if err := loadSchemas(schemas, dir); err != nil {
					return fmt.Errorf("schemas: %w", err)
				}
			}

			srv := httpserver.NewServer(httpserver.Deps{
				Users:   userRepo,
				Rooms:   roomStore,
				Sec:     secStore,
				Views:   reg,
				Policy:  pol,
				JWT:     token.NewManager(jwtSecret),
				Bus:     bus,
				Cache:   cache,
				Exports: exports,
				Schemas: schemas,

				ReporterToken: v.GetString("reporter_token"),
			})

			if err := reg.Watch(ctx, slog.Default(), func() {
				slog.Info("view definitions reloaded")
			}); err != nil {
				log.Printf("[warn] view watch disabled: %v", err)
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shCtx); err != nil {
				log.Printf("[warn] shutdown: %v", err)
			}
			if tp != nil {
				_ = tp.Shutdown(shCtx)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml), supports top-level 'admin:' section")
	cmd.Flags().StringVar(&profile, "profile", "", "optional profiles.<name> overlay from the config file")
	cmd.Flags().StringSliceVar(&includes, "include", nil, "additional config files merged over the base, in order")
	cmd.Flags().String("addr", ":8080", "http api listen address")
	cmd.Flags().String("dsn", "", "database dsn (postgres://, mysql:// or sqlite file path)")
	cmd.Flags().String("jwt_secret", "", "jwt hs256 secret")
	cmd.Flags().String("rbac_model", "configs/rbac_model.conf", "casbin model path")
	cmd.Flags().String("rbac_policy", "configs/rbac_policy.csv", "casbin policy csv path")
	cmd.Flags().String("views", "configs/views.yaml", "table view definitions (yaml)")
	cmd.Flags().String("schemas_dir", "", "directory of <resource>.json payload schemas")
	cmd.Flags().Duration("room_ttl", 30*time.Second, "room lease ttl")
	cmd.Flags().String("reporter_token", "", "shared token room hosts present on heartbeat; empty disables the check")
	cmd.Flags().String("log.level", "info", "log level: debug|info|warn|error")
	cmd.Flags().String("log.format", "console", "log format: console|json")
	cmd.Flags().String("log.file", "", "log file path (rotating); empty = stderr")
	_ = viper.BindPFlags(cmd.Flags())
	return cmd
}

// loadConfig merges the base config file, its includes (in order) and the
// optional profiles.<name> overlay into v. The file may carry a top-level
// admin: section; flags and PITBOSS_* env overrides keep precedence.
func loadConfig(v *viper.Viper, cfgFile, profile string, includes []string) error {
	fileV, err := common.LoadWithIncludes(cfgFile, includes)
	if err != nil {
		return err
	}
	section := ""
	if fileV.Sub("admin") != nil {
		section = "admin"
	}
	fileV, err = common.ApplySectionAndProfile(fileV, section, profile)
	if err != nil {
		return err
	}
	return v.MergeConfigMap(fileV.AllSettings())
}

// loadSchemas registers every <resource>.json file in dir.
func loadSchemas(reg *validation.Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		resource := strings.TrimSuffix(e.Name(), ".json")
		if err := reg.Register(resource, b); err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return nil
}
