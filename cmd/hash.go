package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"mvdan.cc/gofumpt/format"

	"github.com/ItzWarty/liblolskins/internal/inibin"
	"github.com/ItzWarty/liblolskins/internal/skins"
)

var (
	hashGo      bool
	hashPackage string
	hashLegacy  bool
)

type hashRow struct {
	Key  string `json:"key" yaml:"key"`
	Hash string `json:"hash" yaml:"hash"`
	Dec  uint32 `json:"decimal" yaml:"decimal"`
}

var hashCmd = &cobra.Command{
	Use:   "hash [Section*Name...]",
	Short: "Print the property hash of configuration keys",
	Long: `Hash prints the 32-bit property hash of each "Section*Name" argument.
With --legacy the geometry, skeleton and texture keys of every legacy skin
index are added. With --go a gofumpt-formatted Go const block is printed
instead of a table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := append([]string(nil), args...)
		if hashLegacy {
			keys = append(keys, legacyKeyNames()...)
		}
		if len(keys) == 0 {
			return fmt.Errorf("no keys given")
		}

		if hashGo {
			src, err := goConstBlock(hashPackage, keys)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(src)
			return err
		}

		rows := make([]hashRow, len(keys))
		for i, k := range keys {
			h := inibin.HashKey(k)
			rows[i] = hashRow{Key: k, Hash: hexKey(h), Dec: h}
		}
		return render(cmd.OutOrStdout(), rows, []any{"Key", "Hash", "Decimal"}, func(t *tablewriter.Table) error {
			for _, r := range rows {
				if err := t.Append(r.Key, r.Hash, fmt.Sprint(r.Dec)); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func legacyKeyNames() []string {
	var names []string
	for i := uint32(0); i < skins.LegacySkinCount; i++ {
		section := skins.LegacySection(i)
		for _, name := range []string{"SimpleSkin", "Skeleton", "Texture"} {
			names = append(names, section+"*"+name)
		}
	}
	return names
}

// goConstBlock renders keys as Go constants and formats the file with gofumpt.
func goConstBlock(pkg string, keys []string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by skinpath hash; DO NOT EDIT.\n\npackage %s\n\nconst (\n", pkg)
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		ident := goIdent(k)
		if ident == "" || seen[ident] {
			return nil, fmt.Errorf("key %q does not map to a unique Go identifier", k)
		}
		seen[ident] = true
		fmt.Fprintf(&buf, "%s uint32 = %s // %s\n", ident, hexKey(inibin.HashKey(k)), k)
	}
	buf.WriteString(")\n")

	out, err := format.Source(buf.Bytes(), format.Options{})
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return out, nil
}

// goIdent turns "MeshSkin1*SimpleSkin" into "MeshSkin1SimpleSkin".
func goIdent(key string) string {
	var b strings.Builder
	upper := true
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteString("K")
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func init() {
	hashCmd.Flags().BoolVar(&hashGo, "go", false, "print a Go const block instead of a table")
	hashCmd.Flags().StringVar(&hashPackage, "package", "keys", "package name for --go output")
	hashCmd.Flags().BoolVar(&hashLegacy, "legacy", false, "include the legacy skin key table")
	rootCmd.AddCommand(hashCmd)
}
