package extract

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SiteChains overrides the strategy order per field for one site family.
type SiteChains struct {
	Fields map[string][]string `yaml:"fields"`
}

// ChainConfig holds per-site chain overrides loaded from YAML:
//
//	chains:
//	  sites:
//	    tabelog:
//	      fields:
//	        address: [table, jsonld, meta]
type ChainConfig struct {
	Sites map[string]SiteChains `yaml:"sites"`
}

// LoadChainConfig reads chain overrides from a YAML file.
func LoadChainConfig(path string) (*ChainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read chain config %s", path)
	}
	var wrapper struct {
		Chains ChainConfig `yaml:"chains"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "extract: parse chain config")
	}
	return &wrapper.Chains, nil
}

// Apply reorders a chain according to the site's override, if any.
func (c *ChainConfig) Apply(site string, chain Chain) Chain {
	if c == nil {
		return chain
	}
	sc, ok := c.Sites[site]
	if !ok {
		return chain
	}
	names, ok := sc.Fields[string(chain.Field)]
	if !ok {
		return chain
	}
	return chain.Reorder(names)
}
