package common

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// NetworkConfig maps one supported network to its receiving address.
type NetworkConfig struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
}

type networksFile struct {
	Networks []NetworkConfig `yaml:"networks"`
}

// defaultNetworks are the built-in receiving addresses used when no
// networks file is present.
var defaultNetworks = []NetworkConfig{
	{Name: "TRC20", Address: "TLuwiqZGjSrx3ddaDnWq1e2uCszegMMEMD"},
	{Name: "BEP20", Address: "0x9c5fa2ad2a79f1f05a72f8a114f3b6ef92dd04c1"},
	{Name: "ERC20", Address: "0x9c5fa2ad2a79f1f05a72f8a114f3b6ef92dd04c1"},
}

// LoadNetworks reads the network/address list from the YAML file, falling
// back to the built-in defaults when the file does not exist. Returns a
// name -> address map for the deposit flow.
func LoadNetworks(networksFilePath string) (map[string]string, error) {
	path := networksFilePath
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	networks := defaultNetworks
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		zap.L().Info("Networks file not found, using built-in addresses",
			zap.String("file", path))
	case err != nil:
		return nil, fmt.Errorf("failed to read networks file: %w", err)
	default:
		var parsed networksFile
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse networks file: %w", err)
		}
		if len(parsed.Networks) == 0 {
			return nil, fmt.Errorf("networks file %s lists no networks", path)
		}
		networks = parsed.Networks
	}

	out := make(map[string]string, len(networks))
	for _, n := range networks {
		if n.Name == "" || n.Address == "" {
			return nil, fmt.Errorf("network entry missing name or address")
		}
		out[n.Name] = n.Address
	}
	return out, nil
}
