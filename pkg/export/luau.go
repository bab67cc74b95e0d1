package export

import (
	"fmt"
	"strings"
)

// Luau renders the snapshot as a Luau module script returning a table of
// resource IDs keyed by name, ready to drop into a place under
// ReplicatedStorage.
func (s *Snapshot) Luau() string {
	var b strings.Builder
	b.WriteString("-- Generated by rbxsync. Do not edit by hand.\n")
	b.WriteString("return {\n")
	writeLuauSection(&b, "game_passes", s.GamePasses)
	writeLuauSection(&b, "developer_products", s.DeveloperProducts)
	writeLuauSection(&b, "badges", s.Badges)
	b.WriteString("}\n")
	return b.String()
}

func writeLuauSection(b *strings.Builder, key string, resources []Resource) {
	fmt.Fprintf(b, "\t%s = {\n", key)
	for _, r := range resources {
		fmt.Fprintf(b, "\t\t[%s] = %d,\n", luauString(r.Name), r.ID)
	}
	b.WriteString("\t},\n")
}

// luauString quotes a name as a Luau string literal.
func luauString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}
