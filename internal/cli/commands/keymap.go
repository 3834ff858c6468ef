package commands

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keyslip-labs/keyslip/internal/cli/output"
	"github.com/keyslip-labs/keyslip/internal/keymap"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// KeymapOptions holds options for the keymap command.
type KeymapOptions struct {
	Format string // Output format: text, markdown, json, yaml
}

// keymapOutput is the serialization envelope for the active relation.
type keymapOutput struct {
	Source string              `json:"source" yaml:"source"`
	Keys   map[string][]string `json:"keys" yaml:"keys"`
}

// NewKeymapCommand creates the keymap command.
func NewKeymapCommand() *cobra.Command {
	opts := &KeymapOptions{}
	cmd := &cobra.Command{
		Use:   "keymap",
		Short: "Show the active keyboard adjacency",
		Long: `Print the neighbor relation that discounts substitution costs.

The relation comes from the configured keymap file when one is set,
otherwise from the built-in layout. Entries are directional: "o:i"
discounts typing o where i was intended, not the reverse.`,
		Example: `  # Show the active keymap
  keyslip keymap

  # Show a built-in layout
  keyslip keymap --layout azerty

  # Export as YAML
  keyslip keymap --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeymap(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")

	return cmd
}

func runKeymap(cmd *cobra.Command, opts *KeymapOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	cfg := cmdCtx.Cfg

	var (
		rel    spell.NeighborRelation
		source string
		err    error
	)
	if cfg.Keymap != "" {
		rel, err = keymap.Load(cfg.Keymap)
		source = cfg.Keymap
	} else {
		layout := cfg.Layout
		if layout == "" {
			layout = keymap.DefaultLayout
		}
		rel, err = keymap.Builtin(layout)
		source = layout + " (built-in)"
	}
	if err != nil {
		return err
	}

	// yaml is keymap-specific; the renderer modes do not know it.
	format := opts.Format
	if format == "" {
		format = cfg.OutputFormat
	}
	if format == "yaml" {
		return renderKeymapYAML(cmd, source, rel)
	}

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(keymapOutput{Source: source, Keys: relationStrings(rel)})
	case output.ModeMarkdown:
		renderKeymapMarkdown(r, source, rel)
	default:
		renderKeymapText(r, source, rel)
	}
	return nil
}

// relationStrings converts the rune relation into the string form used
// by every serialized rendering.
func relationStrings(rel spell.NeighborRelation) map[string][]string {
	keys := make(map[string][]string, len(rel))
	for k, neighbors := range rel {
		ns := make([]string, len(neighbors))
		for i, n := range neighbors {
			ns[i] = string(n)
		}
		keys[string(k)] = ns
	}
	return keys
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderKeymapText(r *output.Renderer, source string, rel spell.NeighborRelation) {
	r.Printf("Keymap: %s (%d keys)\n", source, len(rel))

	m := relationStrings(rel)
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Neighbors"})

	for _, k := range sortedKeys(m) {
		t.AppendRow(table.Row{k, strings.Join(m[k], " ")})
	}

	t.Render()
}

func renderKeymapMarkdown(r *output.Renderer, source string, rel spell.NeighborRelation) {
	r.Printf("## Keymap: %s\n\n", source)

	m := relationStrings(rel)
	r.Println("| Key | Neighbors |")
	r.Println("| --- | --- |")
	for _, k := range sortedKeys(m) {
		r.Printf("| %s | %s |\n", k, strings.Join(m[k], " "))
	}
}

func renderKeymapYAML(cmd *cobra.Command, source string, rel spell.NeighborRelation) error {
	data, err := yaml.Marshal(keymapOutput{Source: source, Keys: relationStrings(rel)})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
