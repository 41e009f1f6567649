package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	admincmd "github.com/parlaygames/pitboss/internal/cli/admincmd"
	common "github.com/parlaygames/pitboss/internal/cli/common"
)

func main() {
	root := &cobra.Command{Use: "pitboss", Short: "Pitboss admin platform CLI"}

	root.AddCommand(admincmd.New())

	// completion
	comp := &cobra.Command{Use: "completion [bash|zsh|fish|powershell]", Short: "Generate shell completion"}
	comp.Run = func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			log.Fatalf("specify a shell: bash|zsh|fish|powershell")
		}
		switch args[0] {
		case "bash":
			root.GenBashCompletion(os.Stdout)
		case "zsh":
			root.GenZshCompletion(os.Stdout)
		case "fish":
			root.GenFishCompletion(os.Stdout, true)
		case "powershell":
			root.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			log.Fatalf("unknown shell: %s", args[0])
		}
	}
	root.AddCommand(comp)

	// config test (minimal validation)
	cfgTest := &cobra.Command{Use: "config test", Short: "Validate the admin config file"}
	var cfgFile string
	cfgTest.Flags().StringVar(&cfgFile, "config", "", "config file path")
	cfgTest.RunE = func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return fmt.Errorf("--config required")
		}
		v := viper.New()
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
		if err := common.ValidateAdminConfig(v, true); err != nil {
			return err
		}
		fmt.Println("admin config OK")
		return nil
	}
	root.AddCommand(cfgTest)

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
