package main

import (
	"fmt"
	"os"
	"strings"

	"lockbox-go/internal/app"
	"lockbox-go/internal/config"
	"lockbox-go/internal/lockbox"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Keygen", "EncryptFile").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config (run `lockbox config init` first): %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
// With confirm set, the passphrase must be entered twice identically.
func readPassphrase(confirm bool) (string, error) {
	fmt.Fprint(os.Stderr, "Enter passphrase: ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm passphrase: ")
		again, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase confirmation: %w", err)
		}
		if string(pass) != string(again) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}

	return string(pass), nil
}

var rootCmd = &cobra.Command{
	Use:   "lockbox",
	Short: "File encryption with the age container format",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		installID := uuid.New().String()
		cfg := config.NewConfig(installID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", installID)
		fmt.Printf("Key file:   %s\n", cfg.Keys.KeyFile)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", cfg.InstallID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Key file:   %s\n", cfg.Keys.KeyFile)
		fmt.Printf("Armor:      %v\n", cfg.Output.Armor)
		return nil
	},
}

// keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp("Keygen")
		if err != nil {
			return err
		}
		defer a.Close()

		path := a.KeyFilePath(output)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("key file already exists at %s", path)
		}

		publicKey, err := a.Keygen(path)
		if err != nil {
			return fmt.Errorf("generating identity: %w", err)
		}

		fmt.Printf("Key file written to %s\n", path)
		fmt.Printf("Public key: %s\n", publicKey)
		return nil
	},
}

// recipient command
var recipientCmd = &cobra.Command{
	Use:   "recipient [KEYFILE]",
	Short: "Print the public key for a key file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExtractRecipient")
		if err != nil {
			return err
		}
		defer a.Close()

		keyPath := ""
		if len(args) > 0 {
			keyPath = args[0]
		}

		publicKey, err := a.ExtractRecipient(a.KeyFilePath(keyPath))
		if err != nil {
			return err
		}

		fmt.Println(publicKey)
		return nil
	},
}

// encrypt command
var encryptCmd = &cobra.Command{
	Use:   "encrypt [FILE | -t TEXT]",
	Short: "Encrypt a file or a string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipients, _ := cmd.Flags().GetStringArray("recipient")
		usePassphrase, _ := cmd.Flags().GetBool("passphrase")
		output, _ := cmd.Flags().GetString("output")
		text, _ := cmd.Flags().GetBool("text")

		a, err := newApp("EncryptFile")
		if err != nil {
			return err
		}
		defer a.Close()

		armored := a.DefaultArmor()
		if cmd.Flags().Changed("armor") {
			armored, _ = cmd.Flags().GetBool("armor")
		}

		opts := lockbox.EncryptOptions{Recipients: recipients, Armor: armored}
		switch {
		case usePassphrase:
			pass, err := readPassphrase(true)
			if err != nil {
				return err
			}
			opts.Passphrase = pass
		case len(recipients) == 0:
			// No explicit target: encrypt to our own key file.
			self, err := a.ExtractRecipient(a.KeyFilePath(""))
			if err != nil {
				return fmt.Errorf("no recipients given and no usable key file: %w", err)
			}
			opts.Recipients = []string{self}
		}

		if text {
			encoded, err := a.EncryptText([]byte(args[0]), opts)
			if err != nil {
				return err
			}
			fmt.Println(encoded)
			return nil
		}

		src := args[0]
		dst := output
		if dst == "" {
			dst = src + ".age"
		}

		if err := a.EncryptFile(src, dst, opts); err != nil {
			return err
		}
		fmt.Printf("Encrypted %s to %s\n", src, dst)
		return nil
	},
}

// decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt [FILE | -t TEXT]",
	Short: "Decrypt a file or a string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, _ := cmd.Flags().GetString("identity")
		usePassphrase, _ := cmd.Flags().GetBool("passphrase")
		output, _ := cmd.Flags().GetString("output")
		text, _ := cmd.Flags().GetBool("text")

		a, err := newApp("DecryptFile")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		keyPath := ""
		if usePassphrase {
			passphrase, err = readPassphrase(false)
			if err != nil {
				return err
			}
		} else {
			keyPath = a.KeyFilePath(identity)
		}

		if text {
			plaintext, err := a.DecryptText(args[0], keyPath, passphrase)
			if err != nil {
				return err
			}
			fmt.Println(plaintext)
			return nil
		}

		src := args[0]
		dst := output
		if dst == "" {
			dst = strings.TrimSuffix(src, ".age")
			if dst == src {
				return fmt.Errorf("cannot infer output path from %s, use --output", src)
			}
		}

		if err := a.DecryptFile(src, dst, keyPath, passphrase); err != nil {
			return err
		}
		fmt.Printf("Decrypted %s to %s\n", src, dst)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)

	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringP("output", "o", "", "Key file path (default: configured key file)")

	rootCmd.AddCommand(recipientCmd)

	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().StringArrayP("recipient", "r", nil, "Recipient public key (repeatable)")
	encryptCmd.Flags().BoolP("passphrase", "p", false, "Encrypt with a passphrase instead of recipients")
	encryptCmd.Flags().BoolP("armor", "a", false, "Write an ASCII-armored container")
	encryptCmd.Flags().StringP("output", "o", "", "Output path (default: FILE.age)")
	encryptCmd.Flags().BoolP("text", "t", false, "Treat the argument as literal text and print the result")

	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringP("identity", "i", "", "Key file path (default: configured key file)")
	decryptCmd.Flags().BoolP("passphrase", "p", false, "Decrypt with a passphrase instead of a key file")
	decryptCmd.Flags().StringP("output", "o", "", "Output path (default: FILE without .age)")
	decryptCmd.Flags().BoolP("text", "t", false, "Treat the argument as an encoded container and print the plaintext")
}
