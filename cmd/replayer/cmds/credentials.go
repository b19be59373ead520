package cmds

import (
	"os"
	"strings"

	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcnksm/go-input"
)

// credentials lives for the duration of the process only.
var credentials = sessions.NewCredentialStore()

// credentialFlags carries --api-key and --api-key-file, whether they were
// parsed by cobra or by a glazed parameter layer.
type credentialFlags struct {
	APIKey     string `glazed.parameter:"api-key"`
	APIKeyFile string `glazed.parameter:"api-key-file"`
}

func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-key", "", "Anthropic API key (default $REPLAYER_API_KEY)")
	cmd.Flags().String("api-key-file", "", "File containing the Anthropic API key")
}

func credentialParameters() []*parameters.ParameterDefinition {
	return []*parameters.ParameterDefinition{
		parameters.NewParameterDefinition(
			"api-key",
			parameters.ParameterTypeString,
			parameters.WithHelp("Anthropic API key (default $REPLAYER_API_KEY)"),
		),
		parameters.NewParameterDefinition(
			"api-key-file",
			parameters.ParameterTypeString,
			parameters.WithHelp("File containing the Anthropic API key"),
		),
	}
}

func credentialFlagsFromCobra(cmd *cobra.Command) credentialFlags {
	key, _ := cmd.Flags().GetString("api-key")
	path, _ := cmd.Flags().GetString("api-key-file")
	return credentialFlags{APIKey: key, APIKeyFile: path}
}

// resolveCredential looks at --api-key, --api-key-file, the api-key config
// key and finally prompts when stdin is a terminal.
func resolveCredential(flags credentialFlags, prompt bool) (sessions.Credential, error) {
	if c, ok := credentials.Load(); ok {
		return c, nil
	}

	c, source, err := lookupCredential(flags)
	if err != nil {
		return "", err
	}
	if c.IsZero() && prompt && isatty.IsTerminal(os.Stdin.Fd()) {
		c, err = promptCredential()
		if err != nil {
			return "", err
		}
		source = "prompt"
	}
	if c.IsZero() {
		return "", nil
	}

	log.Debug().Str("source", source).Object("api_key", c).Msg("Resolved credential")
	credentials.Save(c)
	return c, nil
}

func lookupCredential(flags credentialFlags) (sessions.Credential, string, error) {
	if strings.TrimSpace(flags.APIKey) != "" {
		return sessions.NewCredential(flags.APIKey), "flag", nil
	}
	if flags.APIKeyFile != "" {
		b, err := os.ReadFile(flags.APIKeyFile)
		if err != nil {
			return "", "", errors.Wrapf(err, "could not read api key file %s", flags.APIKeyFile)
		}
		return sessions.NewCredential(string(b)), "file", nil
	}
	return sessions.NewCredential(viper.GetString("api-key")), "config", nil
}

func promptCredential() (sessions.Credential, error) {
	ui := &input.UI{
		Writer: os.Stderr,
		Reader: os.Stdin,
	}
	answer, err := ui.Ask("Anthropic API key", &input.Options{
		Required:  true,
		Loop:      true,
		Mask:      true,
		HideOrder: true,
	})
	if err != nil {
		return "", errors.Wrap(err, "could not read api key")
	}
	return sessions.NewCredential(answer), nil
}
