// Package docs renders the command reference section of README.md.
package docs

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/keshon/cmdhost/pkg/cmd"
)

// CommandSections lists every registered command, sorted by name, with its
// aliases, description and usage.
func CommandSections(reg *cmd.Registry) string {
	commands := reg.Commands()
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Describe().Name() < commands[j].Describe().Name()
	})

	var buf bytes.Buffer
	for _, c := range commands {
		d := c.Describe()
		fmt.Fprintf(&buf, "* **`/%s`**", d.Name())
		if aliases := d.Names()[1:]; len(aliases) > 0 {
			fmt.Fprintf(&buf, " (aliases: `%s`)", strings.Join(aliases, "`, `"))
		}
		fmt.Fprintf(&buf, "\n  %s\n", d.Description())
		for _, line := range strings.Split(d.Usage(), "\n") {
			fmt.Fprintf(&buf, "  > %s\n", strings.TrimSpace(line))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// Render executes tmpl with .CommandSections set from reg.
func Render(tmpl string, reg *cmd.Registry) ([]byte, error) {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parse readme template: %w", err)
	}
	var out bytes.Buffer
	if err := t.Execute(&out, map[string]any{"CommandSections": CommandSections(reg)}); err != nil {
		return nil, fmt.Errorf("render readme: %w", err)
	}
	return out.Bytes(), nil
}

// UpdateReadme renders the template at tmplPath into outPath.
func UpdateReadme(reg *cmd.Registry, tmplPath, outPath string) error {
	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return err
	}
	out, err := Render(string(tmpl), reg)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, out, 0644)
}
