package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/loanbuddy/helpctl/internal/help"
	"github.com/loanbuddy/helpctl/internal/importer"
	"github.com/loanbuddy/helpctl/internal/output"
	"github.com/loanbuddy/helpctl/internal/store"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:     "content",
	Short:   "Manage the help content served by helpctl serve",
	GroupID: "system",
}

var contentInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the content database and seed the built-in help",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Initialize(getBaseDir())
		if err != nil {
			return err
		}
		defer st.Close()

		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			if err := st.Replace(cmd.Context(), help.Default()); err != nil {
				return err
			}
			output.Success("Reset %s to the built-in help content", store.Path(getBaseDir()))
			return nil
		}

		seeded, err := st.Seed(cmd.Context())
		if err != nil {
			return err
		}
		if seeded {
			output.Success("Created %s with the built-in help content", store.Path(getBaseDir()))
		} else {
			output.Warning("%s already has content (use --reset to replace it)", store.Path(getBaseDir()))
		}
		return nil
	},
}

var contentImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored help with a JSON, TOML or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := importer.ReadFile(args[0])
		if err != nil {
			return err
		}

		if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
			output.Success("%s is valid: %d sections, %d items", args[0], len(doc.Sections), doc.ItemCount())
			return nil
		}

		st, err := store.Initialize(getBaseDir())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Replace(cmd.Context(), doc); err != nil {
			return err
		}
		output.Success("Imported %q: %d sections, %d items", doc.Title, len(doc.Sections), doc.ItemCount())
		return nil
	},
}

var contentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored help as JSON, TOML or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("output")
		formatFlag, _ := cmd.Flags().GetString("format")

		format := importer.Format(formatFlag)
		if formatFlag == "" {
			format = importer.FormatJSON
			if outPath != "" {
				f, err := importer.DetectFormat(outPath)
				if err != nil {
					return err
				}
				format = f
			}
		}

		st, err := store.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer st.Close()

		doc, err := st.Load(cmd.Context())
		if err != nil {
			return err
		}

		if outPath == "" {
			return importer.Encode(output.Stdout, doc, format)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := importer.Encode(f, doc, format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		output.Success("Exported %d sections to %s", len(doc.Sections), outPath)
		return nil
	},
}

var contentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a section to the stored help",
	Long: `Append a section to the stored help.

Without --id and --title, and when stdin is a terminal, a form prompts for
the section.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		title, _ := cmd.Flags().GetString("title")
		items, _ := cmd.Flags().GetStringArray("item")

		if id == "" || title == "" {
			if !isTerminal(os.Stdin) {
				return errors.New("--id and --title are required when stdin is not a terminal")
			}
			sec, err := promptSection(id, title, items)
			if err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
			id, title, items = sec.ID, sec.Title, sec.Items
		}

		st, err := store.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer st.Close()

		sec := help.Section{ID: id, Title: title, Items: items}
		if err := st.AddSection(cmd.Context(), sec); err != nil {
			if errors.Is(err, store.ErrEmpty) {
				return fmt.Errorf("%w: run 'helpctl content init' first", err)
			}
			return err
		}
		output.Success("Added section %s (%d items)", id, len(items))
		return nil
	},
}

// promptSection asks for a section with a huh form, prefilled from flags.
func promptSection(id, title string, items []string) (help.Section, error) {
	itemsText := strings.Join(items, "\n")

	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Section id").
				Description("Short unique key, e.g. billing").
				Value(&id).
				Validate(required("id")),
			huh.NewInput().
				Title("Section title").
				Value(&title).
				Validate(required("title")),
			huh.NewText().
				Title("Items").
				Description("One item per line").
				Value(&itemsText),
		),
	)
	if err := form.Run(); err != nil {
		return help.Section{}, err
	}

	return help.Section{
		ID:    strings.TrimSpace(id),
		Title: strings.TrimSpace(title),
		Items: splitItems(itemsText),
	}, nil
}

// splitItems turns form text into items, one per non-blank line.
func splitItems(text string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(contentInitCmd, contentImportCmd, contentExportCmd, contentAddCmd)

	contentInitCmd.Flags().Bool("reset", false, "Replace existing content with the built-in help")
	contentImportCmd.Flags().Bool("dry-run", false, "Validate the file without storing it")
	contentExportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	contentExportCmd.Flags().StringP("format", "f", "", "json, toml or yaml (default: from --output extension, else json)")
	contentAddCmd.Flags().String("id", "", "Section id")
	contentAddCmd.Flags().String("title", "", "Section title")
	contentAddCmd.Flags().StringArray("item", nil, "Item text (repeatable)")
}
