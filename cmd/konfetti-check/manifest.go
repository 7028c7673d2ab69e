package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samarcan/konfetti"
	"github.com/samarcan/konfetti/natskv"
	"github.com/samarcan/konfetti/resolver"
	"github.com/samarcan/konfetti/vault"
)

// Manifest declares the resolver chain and variables a service uses, so
// the check exercises exactly what the service will see.
type Manifest struct {
	path string

	Resolvers []ResolverSpec `json:"resolvers"`
	Variables []VariableSpec `json:"variables"`
}

// ResolverSpec declares one chain member. Type selects the family; the
// remaining fields apply to that family only.
type ResolverSpec struct {
	Type string `json:"type"` // env, static, vault, nats-kv

	// env
	Prefix string `json:"prefix,omitempty"`

	// static
	Values map[string]string `json:"values,omitempty"`

	// vault
	Address    string       `json:"address,omitempty"`
	Token      string       `json:"token,omitempty"`
	TokenEnv   string       `json:"token_env,omitempty"`
	Mount      string       `json:"mount,omitempty"`
	PathPrefix string       `json:"path_prefix,omitempty"`
	Secrets    []SecretSpec `json:"secrets,omitempty"`

	// nats-kv
	URL    string `json:"url,omitempty"`
	Bucket string `json:"bucket,omitempty"`
}

// SecretSpec maps a variable name to an explicit vault path and field.
type SecretSpec struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Field string `json:"field"`
}

// VariableSpec declares one variable.
type VariableSpec struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Default  json.RawMessage `json:"default,omitempty"`
	Required bool            `json:"required,omitempty"`
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.path = path

	if len(m.Variables) == 0 {
		return nil, fmt.Errorf("manifest declares no variables")
	}

	return &m, nil
}

// Build constructs the container the manifest describes. Resolver order in
// the manifest is chain priority order.
func (m *Manifest) Build(ctx context.Context, logger *slog.Logger) (*konfetti.Konfig, error) {
	resolvers := make([]resolver.Resolver, 0, len(m.Resolvers))
	for i, spec := range m.Resolvers {
		r, err := buildResolver(ctx, spec, logger)
		if err != nil {
			return nil, fmt.Errorf("resolver %d (%s): %w", i, spec.Type, err)
		}
		resolvers = append(resolvers, r)
	}

	vars := make([]konfetti.Variable, 0, len(m.Variables))
	for _, spec := range m.Variables {
		v, err := buildVariable(spec)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}

	return konfetti.New(
		konfetti.WithResolvers(resolvers...),
		konfetti.WithVariables(vars...),
		konfetti.WithLogger(logger),
	)
}

func buildResolver(ctx context.Context, spec ResolverSpec, logger *slog.Logger) (resolver.Resolver, error) {
	switch spec.Type {
	case "env":
		var opts []resolver.EnvOption
		if spec.Prefix != "" {
			opts = append(opts, resolver.WithPrefix(spec.Prefix))
		}
		return resolver.NewEnv(opts...), nil

	case "static":
		return resolver.NewStatic(spec.Values), nil

	case "vault":
		if spec.Address == "" {
			return nil, fmt.Errorf("address is required")
		}
		token := spec.Token
		if token == "" && spec.TokenEnv != "" {
			token = os.Getenv(spec.TokenEnv)
		}
		if token == "" {
			token = os.Getenv("VAULT_TOKEN")
		}
		if token == "" {
			return nil, fmt.Errorf("no token: set token, token_env or VAULT_TOKEN")
		}

		var clientOpts []vault.Option
		if spec.Mount != "" {
			clientOpts = append(clientOpts, vault.WithMount(spec.Mount))
		}
		if spec.PathPrefix != "" {
			clientOpts = append(clientOpts, vault.WithPrefix(spec.PathPrefix))
		}
		clientOpts = append(clientOpts, vault.WithLogger(logger))

		client, err := vault.New(spec.Address, token, clientOpts...)
		if err != nil {
			return nil, err
		}

		var resolverOpts []vault.ResolverOption
		for _, s := range spec.Secrets {
			resolverOpts = append(resolverOpts, vault.WithSecret(s.Name, s.Path, s.Field))
		}
		return vault.NewResolver(client, resolverOpts...), nil

	case "nats-kv":
		if spec.URL == "" || spec.Bucket == "" {
			return nil, fmt.Errorf("url and bucket are required")
		}
		client, err := natskv.Connect(ctx, spec.URL, spec.Bucket,
			natskv.WithName(appName),
			natskv.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return client.Resolver(), nil

	default:
		return nil, fmt.Errorf("unknown resolver type %q", spec.Type)
	}
}

func buildVariable(spec VariableSpec) (konfetti.Variable, error) {
	kind, err := parseKind(spec.Kind)
	if err != nil {
		return konfetti.Variable{}, fmt.Errorf("variable %q: %w", spec.Name, err)
	}

	var opts []konfetti.VarOption
	if spec.Required {
		opts = append(opts, konfetti.Required())
	}
	if len(spec.Default) > 0 {
		def, err := decodeDefault(kind, spec.Default)
		if err != nil {
			return konfetti.Variable{}, fmt.Errorf("variable %q: default: %w", spec.Name, err)
		}
		opts = append(opts, konfetti.WithDefault(def))
	}

	return konfetti.NewVariable(spec.Name, kind, opts...)
}

func parseKind(kind string) (konfetti.Kind, error) {
	switch kind {
	case "string":
		return konfetti.KindString, nil
	case "int":
		return konfetti.KindInt, nil
	case "float":
		return konfetti.KindFloat, nil
	case "bool":
		return konfetti.KindBool, nil
	case "duration":
		return konfetti.KindDuration, nil
	case "time":
		return konfetti.KindTime, nil
	case "date":
		return konfetti.KindDate, nil
	case "string_slice":
		return konfetti.KindStringSlice, nil
	case "json":
		return konfetti.KindJSON, nil
	default:
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
}

// decodeDefault turns a manifest JSON default into the pre-typed value the
// declaration expects. Durations and timestamps travel as strings.
func decodeDefault(kind konfetti.Kind, raw json.RawMessage) (any, error) {
	switch kind {
	case konfetti.KindString:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	case konfetti.KindInt:
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	case konfetti.KindFloat:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	case konfetti.KindBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	case konfetti.KindDuration:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return time.ParseDuration(s)

	case konfetti.KindTime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return time.Parse(konfetti.TimeLayout, s)

	case konfetti.KindDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return time.Parse(konfetti.DateLayout, s)

	case konfetti.KindStringSlice:
		var v []string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	case konfetti.KindJSON:
		var v map[string]any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil

	default:
		return nil, fmt.Errorf("unsupported kind")
	}
}
