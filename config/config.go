package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/xrelay/common"
	"github.com/0xPolygon/xrelay/confirmation"
	"github.com/0xPolygon/xrelay/journal"
	"github.com/0xPolygon/xrelay/log"
	"github.com/0xPolygon/xrelay/proofbuilder"
	"github.com/0xPolygon/xrelay/relay"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagComponents is the flag for components.
	FlagComponents = "components"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"
	// FlagChain is the flag for the chain of a transaction
	FlagChain = "chain"
	// FlagTx is the flag for the hash of a transaction
	FlagTx = "tx"
	// FlagWait is the flag to wait for the confirmations before proving
	FlagWait = "wait"
	// FlagMinConfig prints only the mandatory vars of the configuration
	FlagMinConfig = "minimal"
	// FlagURL is the flag for the URL of a running node
	FlagURL = "url"
	// FlagDirection is the flag for the direction of a relay
	FlagDirection = "direction"
	// FlagBatches is the flag for the number of journaled batches to report per relay
	FlagBatches = "batches"

	EnvVarPrefix       = "XRELAY"
	ConfigType         = "toml"
	SaveConfigFileName = "xrelay_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

/*
Config represents the configuration of the relay node
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// ChainA is the first chain of the bridge
	ChainA NetworkConfig
	// ChainB is the second chain of the bridge
	ChainB NetworkConfig
	// RelayAB relays the headers of chain A into the light client on chain B
	RelayAB relay.Config
	// RelayBA relays the headers of chain B into the light client on chain A
	RelayBA relay.Config
	// Confirmation is the configuration of the trackers of both chains
	Confirmation confirmation.Config
	// ProofBuilder is the configuration of the proof builders of both chains
	ProofBuilder proofbuilder.Config
	// Journal is the sqlite log of submissions and served proofs
	Journal journal.Config
	// RPC is the config for the RPC server
	RPC jRPC.Config
	// Metrics is the config of the prometheus endpoint
	Metrics MetricsConfig
}

// Network returns the configuration of chain A or B
func (c *Config) Network(chain string) NetworkConfig {
	if chain == common.ChainB {
		return c.ChainB
	}
	return c.ChainA
}

// Relay returns the configuration of the relay of a direction
func (c *Config) Relay(direction string) relay.Config {
	if direction == common.Direction(common.ChainB, common.ChainA) {
		return c.RelayBA
	}
	return c.RelayAB
}

// Load loads the configuration
func Load(ctx *cli.Context) (*Config, error) {
	filesData, err := readFiles(ctx.StringSlice(FlagCfg))
	if err != nil {
		return nil, fmt.Errorf("error reading files:  Err:%w", err)
	}
	return LoadFile(filesData, ctx.String(FlagSaveConfigPath))
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err:%w", file, err)
		}
		fileContent := string(content)
		if extension := strings.TrimPrefix(filepath.Ext(file), "."); extension != ConfigType {
			fileContent, err = convertFileToToml(fileContent, extension)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err:%w", file, extension, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

// LoadFile merges the defaults with files, optionally saves the rendered result into
// saveConfigPath and decodes it
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0, len(files)+2) //nolint:mnd
	fileData = append(fileData, FileData{Name: "default_vars", Content: DefaultVars})
	fileData = append(fileData, FileData{Name: "default_values", Content: DefaultValues})
	fileData = append(fileData, files...)

	renderedCfg, err := NewConfigRender(fileData, EnvVarPrefix).Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := filepath.Join(saveConfigPath, SaveConfigFileName)
		if err := os.WriteFile(fullPath, []byte(renderedCfg), DefaultCreationFilePermissions); err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
	}
	return LoadFileFromString(renderedCfg, ConfigType)
}

// LoadFileFromString decodes a rendered configuration. Env vars prefixed with XRELAY
// override any field: XRELAY_RELAYAB_BATCHSIZE=10
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	defaults := viper.New()
	defaults.SetConfigType(ConfigType)
	if err := defaults.ReadConfig(strings.NewReader(quoteVars(DefaultValues))); err != nil {
		return nil, fmt.Errorf("error reading default values: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvVarPrefix)
	v.AutomaticEnv()
	if err := v.ReadConfig(bytes.NewBufferString(configFileData)); err != nil {
		return nil, err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg, decodeHooks...); err != nil {
		return nil, err
	}

	expectedKeys := defaults.AllKeys()
	for _, key := range v.AllKeys() {
		if !slices.Contains(expectedKeys, key) {
			log.Debugf("field %s in config file doesnt have a default value", key)
		}
	}
	return cfg, nil
}
