package providers

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v2"
)

// ProviderConfig describes one registered provider in the registry
// configuration file.
type ProviderConfig struct {
	Type   string `yaml:"type"`
	Name   string `yaml:"name"`
	Issuer string `yaml:"issuer"`

	// github
	Repository        string `yaml:"repository"`
	RepositoryOwnerID string `yaml:"repository_owner_id"`
	WorkflowFilename  string `yaml:"workflow_filename"`

	// static
	Claims     map[string]string `yaml:"claims"`
	MatchClaim string            `yaml:"match_claim"`
}

// Config is the registry configuration file layout.
type Config struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// ParseConfig interprets the configuration file and returns a
// populated registry. Invalid entries are accumulated so a single pass
// reports every problem in the file.
func ParseConfig(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config := &Config{}
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}

	registry := NewRegistry()
	var errs *multierror.Error
	for i, pc := range config.Providers {
		if pc.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("provider %d: missing name", i))
			continue
		}

		switch pc.Type {
		case "github":
			if pc.Repository == "" {
				errs = multierror.Append(errs, fmt.Errorf("provider %q: github type requires repository", pc.Name))
				continue
			}
			issuer := pc.Issuer
			if issuer == "" {
				issuer = GitHubIssuer
			}
			registry.Register(issuer, &GitHub{
				ProviderName:      pc.Name,
				Repository:        pc.Repository,
				RepositoryOwnerID: pc.RepositoryOwnerID,
				WorkflowFilename:  pc.WorkflowFilename,
			})
		case "static":
			if pc.Issuer == "" {
				errs = multierror.Append(errs, fmt.Errorf("provider %q: static type requires issuer", pc.Name))
				continue
			}
			registry.Register(pc.Issuer, &Static{
				ProviderName:   pc.Name,
				RequiredClaims: pc.Claims,
				MatchClaim:     pc.MatchClaim,
			})
		default:
			errs = multierror.Append(errs, fmt.Errorf("provider %q: unknown type %q", pc.Name, pc.Type))
		}
	}

	return registry, errs.ErrorOrNil()
}
