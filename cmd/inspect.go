package cmd

import (
	"fmt"
	"slices"

	"github.com/ohler55/ojg/jp"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ItzWarty/liblolskins/internal/archive"
	"github.com/ItzWarty/liblolskins/internal/inibin"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

var (
	inspectPath string
	inspectKeys []string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive-path>",
	Short: "Decode a configuration file and print its properties",
	Long: `Inspect decodes an .inibin file from the archive. Properties are keyed by
their hash in hex ("0x1a2b3c4d").

  --key Section*Name   show only the named properties
  --path '$.*'         evaluate a JSONPath expression over the decoded document`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openArchive()
		if err != nil {
			return err
		}
		defer func() { _ = archive.Close(a) }()

		doc, err := inspectFile(a, args[0], inspectKeys)
		if err != nil {
			return err
		}

		var out any = doc
		if inspectPath != "" {
			out, err = queryDocument(doc, inspectPath)
			if err != nil {
				return err
			}
		}

		props, _ := doc["properties"].(map[string]any)
		return render(cmd.OutOrStdout(), out, []any{"Key", "Name", "Value"}, func(t *tablewriter.Table) error {
			if inspectPath != "" {
				for _, v := range out.([]any) {
					if err := t.Append("", "", fmt.Sprint(v)); err != nil {
						return err
					}
				}
				return nil
			}
			names := keyNames(inspectKeys)
			for _, k := range sortedKeys(props) {
				if err := t.Append(k, names[k], fmt.Sprint(props[k])); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

// inspectFile decodes the configuration file at p into a generic document:
//
//	{"path": ..., "version": n, "properties": {"0x...": value}}
func inspectFile(a archive.Reader, p string, keys []string) (map[string]any, error) {
	h, err := a.Resolve(a.Root(), p)
	if err != nil {
		return nil, &skins.IOError{Op: "open", Path: p, Err: err}
	}
	data, err := a.ReadAll(h)
	if err != nil {
		return nil, &skins.IOError{Op: "read", Path: p, Err: err}
	}
	t, err := inibin.Decode(data)
	if err != nil {
		return nil, &skins.IOError{Op: "decode", Path: p, Err: err}
	}

	want := keyNames(keys)
	props := make(map[string]any, len(t.Properties))
	for _, k := range t.Keys() {
		hex := hexKey(k)
		if len(want) > 0 {
			if _, ok := want[hex]; !ok {
				continue
			}
		}
		props[hex] = t.Properties[k]
	}
	return map[string]any{
		"path":       archive.HandleFor(p).String(),
		"version":    int64(t.Version),
		"properties": props,
	}, nil
}

// queryDocument evaluates a JSONPath expression against doc.
func queryDocument(doc map[string]any, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	results := x.Get(doc)
	if results == nil {
		results = []any{}
	}
	return results, nil
}

// keyNames maps the hex hash of every "Section*Name" to its readable form.
func keyNames(keys []string) map[string]string {
	names := make(map[string]string, len(keys))
	for _, k := range keys {
		names[hexKey(inibin.HashKey(k))] = k
	}
	return names
}

func hexKey(k uint32) string {
	return fmt.Sprintf("0x%08x", k)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// fixed-width hex sorts like the numbers it encodes
	slices.Sort(keys)
	return keys
}

func init() {
	inspectCmd.Flags().StringVar(&inspectPath, "path", "", "JSONPath expression to evaluate")
	inspectCmd.Flags().StringArrayVar(&inspectKeys, "key", nil, "only show the property Section*Name (repeatable)")
	rootCmd.AddCommand(inspectCmd)
}
